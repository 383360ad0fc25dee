package model

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FieldError is a validation failure attached to one input field, named by
// its JSON key.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports input that failed checks the validator tags cannot
// express (for example a due date in the past).
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error {
	return err.Err
}

// FieldErrors flattens a validation failure into field -> message. It returns
// nil for errors that are not validation failures.
func FieldErrors(err error) map[string]string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		out := make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			out[fe.Field()] = fe.Translate(Translator)
		}
		return out
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		out := make(map[string]string, len(vErr.Fields))
		for _, fe := range vErr.Fields {
			out[fe.Field] = fe.Error
		}
		if len(out) == 0 && vErr.Err != nil {
			out["error"] = vErr.Err.Error()
		}
		return out
	}
	return nil
}

// IsValidation reports whether err came from input validation.
func IsValidation(err error) bool {
	return FieldErrors(err) != nil
}
