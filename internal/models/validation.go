package models

import (
	"errors"
	"strings"
)

// ValidationError is a single failed check against a draft, loom or pattern.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

func (v ValidationError) Unwrap() error { return v.Cause }

// ValidationErrors collects every failed check so a whole draft can be
// reported at once.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records err under field. A nested *ValidationErrors is flattened with
// dotted paths, so "threading" under "looms[0]" becomes "looms[0].threading".
func (v *ValidationErrors) Add(field string, err error) {
	var nested *ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &nested):
		for _, e := range nested.Errors {
			e.Field = joinField(field, e.Field)
			v.Errors = append(v.Errors, e)
		}
	default:
		v.Errors = append(v.Errors, ValidationError{Field: field, Message: err.Error(), Cause: err})
	}
}

// AddMessage records a failed check with no underlying error. Empty
// messages are ignored.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message != "" {
		v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
	}
}

// Err returns v as an error, or nil when nothing failed.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each failed check to errors.Is and errors.As.
func (v *ValidationErrors) Unwrap() []error {
	if v == nil {
		return nil
	}
	errs := make([]error, len(v.Errors))
	for i, e := range v.Errors {
		errs[i] = e
	}
	return errs
}

func joinField(prefix, field string) string {
	if prefix == "" || field == "" {
		return prefix + field
	}
	return prefix + "." + field
}
