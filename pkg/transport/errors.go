package transport

import "errors"

var errUnknownKind = errors.New("unknown transport kind")
