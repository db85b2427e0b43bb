// Package inputval validates raw request values before they reach a store.
package inputval

import (
	"net/mail"
	"strings"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidEmail reports whether s is a bare address (no display name) with
// well-formed dot placement on both sides of the @.
func IsValidEmail(s string) bool {
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	for _, part := range []string{s[:at], s[at+1:]} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// ObjectID parses a required hex id. field names the input in the
// ValidationError.
func ObjectID(field, s string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, apperr.Invalid(field, "is required")
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid(field, "must be a 24-character hex id")
	}
	return id, nil
}

// OptionalObjectID is ObjectID for filters; "" yields the zero id.
func OptionalObjectID(field, s string) (primitive.ObjectID, error) {
	if strings.TrimSpace(s) == "" {
		return primitive.NilObjectID, nil
	}
	return ObjectID(field, s)
}
