// Package dates parses and walks the calendar dates used by attendance and
// leave records.
package dates

import (
	"time"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/domain/models"
)

// Parse validates s as a YYYY-MM-DD calendar date and returns it in
// canonical form. field names the input in the returned ValidationError.
func Parse(field, s string) (string, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return "", apperr.Invalid(field, "must be a date in YYYY-MM-DD form")
	}
	return t.Format(models.DateLayout), nil
}

// ParseOptional is Parse for optional filters; "" passes through.
func ParseOptional(field, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return Parse(field, s)
}

// Range validates an inclusive [from, to] pair.
func Range(from, to string) (string, string, error) {
	f, err := Parse("from_date", from)
	if err != nil {
		return "", "", err
	}
	t, err := Parse("to_date", to)
	if err != nil {
		return "", "", err
	}
	if t < f {
		return "", "", apperr.Invalid("to_date", "must not be before from_date")
	}
	return f, t, nil
}

// Weekday returns the English weekday name for a time in loc.
func Weekday(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Weekday().String()
}
