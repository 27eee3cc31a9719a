package osc

import "fmt"

// Code is one of the stable error codes the wire codec and dispatcher
// can raise. Values mirror liblo's LOP_E* constants so that logs and
// error messages stay recognisable across implementations.
type Code int

const (
	NoPath Code = iota + 1
	NoType
	UnknownProto
	NoPort
	TooBig
	IntErr
	EAlloc
	EInvalidPath
	EInvalidType
	EBadType
	ESize
	EInvalidArg
	ETerm
	EPad
	EInvalidBundle
	EInvalidTime
)

func (c Code) String() string {
	switch c {
	case NoPath:
		return "NOPATH"
	case NoType:
		return "NOTYPE"
	case UnknownProto:
		return "UNKNOWNPROTO"
	case NoPort:
		return "NOPORT"
	case TooBig:
		return "TOOBIG"
	case IntErr:
		return "INT_ERR"
	case EAlloc:
		return "EALLOC"
	case EInvalidPath:
		return "EINVALIDPATH"
	case EInvalidType:
		return "EINVALIDTYPE"
	case EBadType:
		return "EBADTYPE"
	case ESize:
		return "ESIZE"
	case EInvalidArg:
		return "EINVALIDARG"
	case ETerm:
		return "ETERM"
	case EPad:
		return "EPAD"
	case EInvalidBundle:
		return "EINVALIDBUND"
	case EInvalidTime:
		return "EINVALIDTIME"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error is a codec or dispatch failure. Path is the offending OSC path
// when one was known at the point of failure, empty otherwise.
type Error struct {
	Code Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("osc: %s %q: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("osc: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(c Code, path string, err error) *Error {
	return &Error{Code: c, Path: path, Err: err}
}

func newErrorf(c Code, path, format string, args ...any) *Error {
	return newError(c, path, fmt.Errorf(format, args...))
}
