package models

import "errors"

var (
	ErrUnknownStatus = errors.New("unknown connectivity status")
)
