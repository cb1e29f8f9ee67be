package errors

import (
	"encoding/json"
	"fmt"
)

var ErrNullNotAllowed = fmt.Errorf("null not allowed")
var ErrInvalidArgument = fmt.Errorf("invalid argument")
var ErrFormat = fmt.Errorf("format error")
var ErrIO = fmt.Errorf("i/o error")

type myError struct {
	msg    string
	target error
	cause  error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }
func (m myError) Unwrap() error        { return m.cause }

// NewNullNotAllowedError reports that a required argument was absent
func NewNullNotAllowedError(argument string) error {
	return &myError{
		msg:    fmt.Sprintf("%s must not be nil", argument),
		target: ErrNullNotAllowed,
	}
}

// NewInvalidArgumentError reports a present argument that violates an invariant
func NewInvalidArgumentError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrInvalidArgument,
	}
}

// NewFormatError reports malformed or type-mismatched wire format input for a named field.
// When the cause is a json type error its nested field path is appended to the field name.
func NewFormatError(field string, cause error) error {
	if ute, ok := cause.(*json.UnmarshalTypeError); ok && ute.Field != "" {
		field = field + "." + ute.Field
	}

	msg := fmt.Sprintf("invalid document field \"%s\"", field)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}

	return &myError{
		msg:    msg,
		target: ErrFormat,
		cause:  cause,
	}
}

// NewIOError classifies a stream or resource failure
func NewIOError(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}

	return &myError{
		msg:    msg,
		target: ErrIO,
		cause:  cause,
	}
}
