// Package apperr defines the error kinds returned by the attendance engine.
//
// Each kind is a distinct type so callers can branch with errors.As. None of
// them are retried by the engine; the HTTP layer maps them to status codes
// with ToHTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	wafflerr "github.com/dalemusser/waffle/pantry/errors"
)

// ValidationError reports malformed input: a bad date, a missing field, an
// unknown status, or a student outside the session's roster.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Kind string // "student", "subject", "teacher", "leave", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// LockedSessionError reports an attempt to change a locked session.
type LockedSessionError struct {
	SubjectID   string
	Date        string
	SessionType string
	Period      int
}

func (e *LockedSessionError) Error() string {
	return fmt.Sprintf("session %s %s %s/%d is locked", e.SubjectID, e.Date, e.SessionType, e.Period)
}

// InvalidStateError reports a state transition that is not allowed from the
// entity's current state.
type InvalidStateError struct {
	Kind    string
	ID      string
	Current string
	Want    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s, want %s", e.Kind, e.ID, e.Current, e.Want)
}

// ForbiddenError reports an actor acting outside their role.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }

// Invalid is shorthand for a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFound is shorthand for a NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Forbidden is shorthand for a ForbiddenError.
func Forbidden(reason string) error {
	return &ForbiddenError{Reason: reason}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsLocked reports whether err is or wraps a LockedSessionError.
func IsLocked(err error) bool {
	var e *LockedSessionError
	return errors.As(err, &e)
}

// IsInvalidState reports whether err is or wraps an InvalidStateError.
func IsInvalidState(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// IsForbidden reports whether err is or wraps a ForbiddenError.
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}

// ToHTTP converts an engine error into the structured HTTP error written by
// wafflerr.Write. Unknown errors become 500s with the cause attached.
func ToHTTP(err error) *wafflerr.Error {
	var (
		ve *ValidationError
		ne *NotFoundError
		le *LockedSessionError
		se *InvalidStateError
		fe *ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		e := wafflerr.Validation(ve.Message)
		if ve.Field != "" {
			e = e.WithDetail("field", ve.Field)
		}
		return e
	case errors.As(err, &ne):
		return wafflerr.NotFound(ne.Error())
	case errors.As(err, &le):
		return wafflerr.New("session_locked", le.Error(), http.StatusLocked)
	case errors.As(err, &se):
		return wafflerr.Conflict(se.Error()).WithDetail("current", se.Current)
	case errors.As(err, &fe):
		return wafflerr.Forbidden(fe.Reason)
	default:
		return wafflerr.Internal("an internal error occurred").Wrap(err)
	}
}
