package config

import (
	"errors"
	"fmt"
)

var (
	errInvalidDuration = fmt.Errorf("invalid duration")

	ErrInvalidConfig = errors.New("invalid configuration")
)
