package popcorn

import (
	"errors"
	"fmt"
)

// Kind identifies the layer a load failure originated from.
type Kind int

const (
	KindIO Kind = iota + 1
	KindUnknownFormat
	KindParser
	KindUnsupportedArch
	KindMapExists
	KindEngine
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindUnknownFormat:
		return "unknown format"
	case KindParser:
		return "parser"
	case KindUnsupportedArch:
		return "unsupported architecture"
	case KindMapExists:
		return "mapping already exists"
	case KindEngine:
		return "engine"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by loading and by the Emulator
// memory operations. Exactly one Kind is set; the remaining fields carry the
// context of the failure.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "open", "seek", "map".
	Op string
	// Value is the rejected value in readable form (unsupported machine,
	// parser description).
	Value string
	// Mapping is the rejected mapping for KindMapExists.
	Mapping *MemMap
	Err     error
}

var (
	ErrIO              = &Error{Kind: KindIO}
	ErrUnknownFormat   = &Error{Kind: KindUnknownFormat}
	ErrParser          = &Error{Kind: KindParser}
	ErrUnsupportedArch = &Error{Kind: KindUnsupportedArch}
	ErrMapExists       = &Error{Kind: KindMapExists}
	ErrEngine          = &Error{Kind: KindEngine}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	switch {
	case e.Mapping != nil:
		msg += " " + e.Mapping.Key()
	case e.Value != "":
		msg += " " + e.Value
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels work with
// errors.Is regardless of context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IOError(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

func UnknownFormatError(magic []byte) error {
	return &Error{Kind: KindUnknownFormat, Value: fmt.Sprintf("% x", magic)}
}

func ParserError(desc string, err error) error {
	return &Error{Kind: KindParser, Value: desc, Err: err}
}

func UnsupportedArchError(desc string) error {
	return &Error{Kind: KindUnsupportedArch, Value: desc}
}

func MapExistsError(m MemMap) error {
	return &Error{Kind: KindMapExists, Op: "map", Mapping: &m}
}

func EngineError(op string, err error) error {
	return &Error{Kind: KindEngine, Op: op, Err: err}
}
