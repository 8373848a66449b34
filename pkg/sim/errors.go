package sim

import "errors"

var errNotRegistered = errors.New("no instance registered")
