package host

import "errors"

var (
	errEmptyName      = errors.New("class has no full name")
	errDuplicateClass = errors.New("class already registered")
)
