package wire

import "errors"

var (
	ErrNonFiniteValue   = errors.New("resource quantity is not a finite number")
	ErrMalformedPayload = errors.New("malformed snapshot payload")
	ErrInvalidKey       = errors.New("resource identifier is not valid UTF-8")
)
