package monnify

import (
	"fmt"
)

const (
	CodeAuthFailed        = "auth-failed"
	CodeTransferRejected  = "transfer-rejected"
	CodeConnection        = "connection"
	CodeMalformedResponse = "malformed-response"
	CodeUnknown           = "unknown"
)

// Error returned by the client on any failed call
type Error struct {
	Code string

	// Zero if there was no response at all
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("monnify: code: %s, status: %d, error: %v", e.Code, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code string, statusCode int, body string, err error) *Error {
	return &Error{
		Code:       code,
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}
