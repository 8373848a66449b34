package httpx

import "errors"

var errNotHijacker = errors.New("response writer does not support hijacking")
