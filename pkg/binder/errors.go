package binder

import "errors"

var (
	// ErrBindingUnavailable wraps every discovery failure.
	ErrBindingUnavailable = errors.New("binding unavailable")
	// ErrHostPanic wraps a panic raised by host code during a call.
	ErrHostPanic = errors.New("host code panicked")

	errTargetNotFound  = errors.New("target class not loaded")
	errAmbiguousTarget = errors.New("several classes match the target")
	errNoInstance      = errors.New("no live instance of the target")
	errAccessorMissing = errors.New("accessor not found")
	errAccessorShape   = errors.New("accessor has an unusable signature")
	errNotEnumerable   = errors.New("value is not enumerable")
	errNotNumeric      = errors.New("value is not numeric")
	errNilValue        = errors.New("nil value")
)
