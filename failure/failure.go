// Package failure classifies errors raised while rendering, resizing and
// saving so the interactive side can decide what to show.
package failure

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies a class of failure.
type Kind int

const (
	// EncodingOther is any rendering failure without a more specific kind.
	EncodingOther Kind = iota
	// EncodingCapacityExceeded means the content does not fit the symbol.
	EncodingCapacityExceeded
	// ResourceExhausted means a surface could not be allocated.
	ResourceExhausted
	// IO is a persistence sink failure.
	IO
	// Cancelled is not an error; results of this kind are discarded.
	Cancelled
	// InvalidRequest is an upstream contract violation.
	InvalidRequest
)

func (k Kind) String() string {
	switch k {
	case EncodingCapacityExceeded:
		return "encoding capacity exceeded"
	case ResourceExhausted:
		return "resource exhausted"
	case IO:
		return "io failure"
	case Cancelled:
		return "cancelled"
	case InvalidRequest:
		return "invalid request"
	default:
		return "encoding failure"
	}
}

var (
	// ErrCapacityExceeded is wrapped by symbol encoders when the content is too long.
	ErrCapacityExceeded = errors.New("content too long to encode")
	// ErrResourceExhausted is wrapped when a surface is larger than allowed.
	ErrResourceExhausted = errors.New("insufficient memory")
	// ErrInvalidRequest is wrapped when a request breaks a pipeline invariant.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSizeTooSmall is wrapped when the image has less than one pixel per module.
	ErrSizeTooSmall = errors.New("image size too small for symbol")
)

// Failure is a classified error.
type Failure struct {
	Kind Kind
	Path string // set for IO
	Err  error
}

func (f *Failure) Error() string {
	if f.Path != "" {
		return fmt.Sprintf("%s: %q: %v", f.Kind, f.Path, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// New returns a Failure of the given kind.
func New(kind Kind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// IOFailure wraps a persistence error with the path it concerns.
func IOFailure(path string, err error) *Failure {
	return &Failure{Kind: IO, Path: path, Err: err}
}

// Invalid returns an InvalidRequest failure with a formatted reason.
func Invalid(format string, a ...any) *Failure {
	return &Failure{Kind: InvalidRequest, Err: errors.Wrapf(ErrInvalidRequest, format, a...)}
}

// Classify turns err into a Failure. It returns nil for a nil error.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return New(Cancelled, err)
	case errors.Is(err, ErrCapacityExceeded):
		return New(EncodingCapacityExceeded, err)
	case errors.Is(err, ErrResourceExhausted):
		return New(ResourceExhausted, err)
	case errors.Is(err, ErrInvalidRequest):
		return New(InvalidRequest, err)
	}
	return New(EncodingOther, err)
}

// KindOf is a shorthand for Classify(err).Kind.
// A nil error reports EncodingOther; callers check for nil first.
func KindOf(err error) Kind {
	if f := Classify(err); f != nil {
		return f.Kind
	}
	return EncodingOther
}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	return err != nil && KindOf(err) == Cancelled
}
