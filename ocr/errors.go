package ocr

import "errors"

// ErrClosed is returned when a closed client is used.
var ErrClosed = errors.New("ocr: client closed")
