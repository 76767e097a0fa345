package engine

import (
	"fmt"

	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

// Success a successful result
func Success(format string, args ...interface{}) Result {
	return Result{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

// Fail an error result
func Fail(err error) Result {
	return Result{Status: StatusError, Message: err.Error(), Err: err}
}

// Failf a typed error result
func Failf(code errs.Code, format string, args ...interface{}) Result {
	return Fail(errs.New(code, format, args...))
}

// Terminate unwind with a return value
func Terminate(v value.Value) Result {
	return Result{Status: StatusTerminated, Value: v}
}

// Break stop the nearest enclosing loop
func Break() Result {
	return Result{Status: StatusSuccess, Signal: SignalBreak}
}

// Continue skip to the next iteration of the nearest enclosing loop
func Continue() Result {
	return Result{Status: StatusSuccess, Signal: SignalContinue}
}

// OK check if the result lets the chain advance
func (res Result) OK() bool {
	return res.Status == StatusSuccess && res.Signal == SignalNone
}

// IsError check if the result is an error
func (res Result) IsError() bool {
	return res.Status == StatusError
}

// IsTerminated check if the result is terminated
func (res Result) IsTerminated() bool {
	return res.Status == StatusTerminated
}

// Code the error code, 0 if untyped or not an error
func (res Result) Code() errs.Code {
	return errs.CodeOf(res.Err)
}

// WithValue set the value
func (res Result) WithValue(v value.Value) Result {
	res.Value = v
	return res
}

// String the result in human-readable form
func (res Result) String() string {
	switch res.Status {
	case StatusError:
		return "Error(" + res.Message + ")"
	case StatusTerminated:
		return "Terminated(" + res.Value.String() + ")"
	}
	switch res.Signal {
	case SignalBreak:
		return "Success(break)"
	case SignalContinue:
		return "Success(continue)"
	}
	return "Success(" + res.Message + ")"
}
