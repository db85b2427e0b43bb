// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// PlainText strips all markup from s and trims surrounding space.
// Remarks, leave reasons and room labels are plain text everywhere they are
// shown, so nothing is kept.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy().Sanitize(s))
}
