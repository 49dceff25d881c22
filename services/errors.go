package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for callers that need more than an HTTP
// code: partial_failure in particular marks a known inconsistent state
// that was logged for manual reconciliation.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotFound         ErrorKind = "not_found"
	KindUpstream         ErrorKind = "upstream"
	KindPartialFailure   ErrorKind = "partial_failure"
)

// ErrNoCurrentUser means the request carries no usable identity: either
// no session cookie at all, or a valid session whose user record is gone.
// Distinct from an invalid session, which is an AppError.
var ErrNoCurrentUser = errors.New("no current user")

type AppError struct {
	HTTPCode int
	Kind     ErrorKind
	Message  string
	Data     interface{}
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAppError(httpCode int, kind ErrorKind, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Kind: kind, Message: message, Err: err}
}

func newAppErrorWithData(httpCode int, kind ErrorKind, message string, data interface{}, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Kind: kind, Message: message, Data: data, Err: err}
}
