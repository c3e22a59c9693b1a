// Package dmerrors declares the sentinel error kinds shared by the engine
// components, so callers can branch on error class with errors.Is instead
// of string matching.
package dmerrors

import "errors"

var (
	// ErrArgumentInvalid marks a null/empty/out-of-range input at a
	// public boundary. It is always a caller bug.
	ErrArgumentInvalid = errors.New("datamorph: invalid argument")

	// ErrMalformedRecord marks a JSON Lines record that failed to parse.
	ErrMalformedRecord = errors.New("datamorph: malformed record")

	// ErrCancelled marks a background operation stopped by its
	// cancellation token.
	ErrCancelled = errors.New("datamorph: cancelled")

	// ErrDisposed marks a call made after the owning resource was
	// closed.
	ErrDisposed = errors.New("datamorph: disposed")

	// ErrOutOfRange marks an out-of-bounds row or column index.
	ErrOutOfRange = errors.New("datamorph: index out of range")
)
