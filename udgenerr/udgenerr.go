// Package udgenerr defines the error taxonomy shared by the compression and
// query-generation packages: IO, Format, Parser, Invariant and ArgSpec, as
// described in the design notes of the toolchain this module implements.
package udgenerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy buckets. It exists so
// callers can test an error's kind with Is without caring about the
// underlying wrapped error.
type Kind int

const (
	// IO covers path-not-found, permission-denied, file-already-exists and
	// unexpected-EOF failures.
	IO Kind = iota
	// Format covers on-disk layout violations: sizes that aren't multiples
	// of the record size, offsets out of range.
	Format
	// Parser covers malformed records from the triple source. Parser errors
	// are always recovered at record granularity by the caller; this kind
	// exists for diagnostic sinks, not for propagation.
	Parser
	// Invariant covers programmer errors: unsorted input where sorted is
	// required, unknown TermId during decompression, an odd query count
	// under an alternating order. These abort; there is no recovery.
	Invariant
	// ArgSpec covers malformed query spec strings.
	ArgSpec
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case Format:
		return "format"
	case Parser:
		return "parser"
	case Invariant:
		return "invariant"
	case ArgSpec:
		return "argspec"
	default:
		return "unknown"
	}
}

// Error is a taxonomy-tagged error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Of wraps err with the given kind. Of(k, nil) returns nil.
func Of(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: err}
}

// Ofm is Of with an fmt.Errorf-style message wrapping err.
func Ofm(k Kind, format string, a ...any) error {
	return Of(k, fmt.Errorf(format, a...))
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, k Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Err
	}
	return false
}
