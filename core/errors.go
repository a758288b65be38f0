package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries one or more field-keyed errors to be mirrored back
// to the caller uninterpreted.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldErrorMap groups the field errors as field name -> list of messages,
// the shape rendered to API clients.
func (err ValidationError) FieldErrorMap() map[string][]string {
	if len(err.Fields) == 0 {
		return nil
	}
	fldErrs := make(map[string][]string, len(err.Fields))
	for _, fErr := range err.Fields {
		fldErrs[fErr.Field] = append(fldErrs[fErr.Field], fErr.Error)
	}
	return fldErrs
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
