// Package normalize canonicalises user-entered identifiers before they are
// stored or compared.
package normalize

import "strings"

// Email trims and lower-cases an email address.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims a display name and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string { return strings.Join(strings.Fields(s), " ") }

// Role trims and lower-cases a role name.
func Role(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Code trims and upper-cases a program or subject code.
func Code(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// RollNumber trims and upper-cases a roll number.
func RollNumber(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Label trims a batch or division label and upper-cases it so "a" and "A"
// name the same division.
func Label(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// LoginID trims a login id. Case folding for lookups is done separately
// with text.Fold.
func LoginID(s string) string { return strings.TrimSpace(s) }
