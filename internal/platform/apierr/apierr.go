// Package apierr carries an HTTP status and a stable machine-readable
// code alongside the underlying error, so services can decide the
// response shape without handlers inspecting error strings.
package apierr

import "fmt"

type Error struct {
	Status int
	Code   string
	Err    error
}

// Error reports the wrapped cause when there is one, falling back to the
// code so a bare status error still reads in logs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf builds the cause from a format string, for call sites that have no
// error to wrap.
func Newf(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}
