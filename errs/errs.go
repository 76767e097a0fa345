package errs

import (
	"errors"
	"fmt"
)

// Code the error category
type Code int

const (
	// Parameter missing or mistyped block/function parameter
	Parameter Code = iota + 1

	// Resolution variable reference cannot be resolved
	Resolution

	// Quota async task, iteration or recursion limits
	Quota

	// Timeout function wall-clock budget exceeded
	Timeout

	// Validation event payload does not match the schema
	Validation

	// UnknownKind unregistered block kind
	UnknownKind
)

var names = map[Code]string{
	Parameter:   "ParameterError",
	Resolution:  "ResolutionError",
	Quota:       "QuotaExceeded",
	Timeout:     "TimeoutError",
	Validation:  "ValidationError",
	UnknownKind: "UnknownKind",
}

// String the name of the code
func (code Code) String() string {
	if name, has := names[code]; has {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(code))
}

// Error a typed, non-fatal runtime error
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New create a typed error
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap create a typed error carrying the cause
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (err *Error) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%s: %s", err.Message, err.Err.Error())
	}
	return err.Message
}

// Unwrap the cause
func (err *Error) Unwrap() error {
	return err.Err
}

// Is check whether any error in the chain carries the code
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// CodeOf returns the code of the first typed error in the chain, 0 if none
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
