package bridge

import "errors"

var (
	ErrTransport          = errors.New("transport failure")
	ErrTimeout            = errors.New("request timed out")
	ErrUnexpectedStatus   = errors.New("unexpected status")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrSerialization      = errors.New("snapshot serialization failed")
	errProviderPanic      = errors.New("state provider panicked")
	errUnknownMode        = errors.New("unknown mode")
	errMissingStateSource = errors.New("state provider is required")
)
