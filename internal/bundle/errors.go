package bundle

import (
	"errors"
	"fmt"
)

var (
	ErrDirectoryNotFound = errors.New("source directory not found")
	ErrIO                = errors.New("i/o failure")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrUnknownProfile    = errors.New("unknown output profile")
	ErrMalformed         = errors.New("malformed bundle")
	ErrStale             = errors.New("bundle is stale")
)

// Error wraps a bundling failure with the offending path.
// Kind is one of the sentinel errors above; Err is the underlying cause, if any.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func ioError(path string, err error) error {
	return &Error{Kind: ErrIO, Path: path, Err: err}
}

func invalidIdentifierf(path, format string, args ...any) error {
	return &Error{Kind: ErrInvalidIdentifier, Path: path, Err: fmt.Errorf(format, args...)}
}

func malformedf(format string, args ...any) error {
	return &Error{Kind: ErrMalformed, Err: fmt.Errorf(format, args...)}
}
