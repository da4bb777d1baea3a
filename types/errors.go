package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures by the component that raised them
type ErrorKind string

const (
	KindExhausted           ErrorKind = "exhausted"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindGeneration          ErrorKind = "generation"
	KindSynthesis           ErrorKind = "synthesis"
	KindNoResults           ErrorKind = "no_results"
	KindDownload            ErrorKind = "download"
	KindClipTooShort        ErrorKind = "clip_too_short"
	KindRender              ErrorKind = "render"
	KindAuth                ErrorKind = "auth"
	KindUpload              ErrorKind = "upload"
	KindInternal            ErrorKind = "internal"
)

// Sentinels for errors.Is checks, one per kind.
var (
	ErrExhausted           = &Error{Kind: KindExhausted}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrGeneration          = &Error{Kind: KindGeneration}
	ErrSynthesis           = &Error{Kind: KindSynthesis}
	ErrNoResults           = &Error{Kind: KindNoResults}
	ErrDownload            = &Error{Kind: KindDownload}
	ErrClipTooShort        = &Error{Kind: KindClipTooShort}
	ErrRender              = &Error{Kind: KindRender}
	ErrAuth                = &Error{Kind: KindAuth}
	ErrUpload              = &Error{Kind: KindUpload}
	ErrInternal            = &Error{Kind: KindInternal}
)

// Error is a classified pipeline failure
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that failed
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels above work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
