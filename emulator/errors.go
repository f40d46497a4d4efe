package emulator

import "errors"

var (
	ErrArchUnsupported = errors.New("architecture unsupported")
	ErrArchMismatch    = errors.New("architecture mismatch")
	ErrBackendNotFound = errors.New("backend not found")
	ErrArgumentInvalid = errors.New("argument invalid")
	ErrMemMapped       = errors.New("memory already mapped")
	ErrMemUnmapped     = errors.New("memory unmapped")
	ErrNotImplemented  = errors.New("not implemented")
	ErrClosed          = errors.New("emulator closed")
)
