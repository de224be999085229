package apperrors

import (
	"errors"
)

var (
	ErrEventAlreadyProcessed = errors.New("event already processed")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventInvalid          = errors.New("event is invalid")
	ErrEventNotQualifying    = errors.New("event type does not qualify for auto-save")

	ErrInvalidSplit = errors.New("amount or percentage out of range")

	ErrInvalidCredentials = errors.New("invalid operator credentials")
	ErrInvalidToken       = errors.New("invalid operator token")
)
