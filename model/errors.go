package model

import stderrors "errors"

// Kind enumerates the error taxonomy of spec.md §7.  Construction-time
// failures (NoFile, NoDirectory, OpenFailure, GzipUnavailable, ...)
// propagate as ordinary errors carrying a Kind; hot-path outcomes
// (NullRead, NLimitExceeded, OutOfRange) are returned as values, never
// raised, and so have no Kind of their own (see qcheck.Result and
// AddReadResult).
type Kind int

const (
	// KindUnknown is the zero Kind; errors without an explicit Kind use
	// it so the zero value is never mistaken for a specific failure mode.
	KindUnknown Kind = iota
	// KindNoFile means a configured input path does not exist.
	KindNoFile
	// KindNoDirectory means a configured output path's directory does
	// not exist.
	KindNoDirectory
	// KindOpenFailure means the underlying OS/stream handle could not be
	// opened or created.
	KindOpenFailure
	// KindCloseFailure means closing the underlying stream failed.
	KindCloseFailure
	// KindWriteFailure means a write to the underlying stream failed.
	KindWriteFailure
	// KindMemoryExhausted means a buffer allocation failed.
	KindMemoryExhausted
	// KindGzipUnavailable means zipped was requested but no gzip backend
	// was compiled in.
	KindGzipUnavailable
	// KindGzipOpenFailure means the gzip encoder itself failed to
	// initialize.
	KindGzipOpenFailure
	// KindGzipBufferTooSmall means the gzip encoder needed more headroom
	// than the configured buffer left it.
	KindGzipBufferTooSmall
	// KindEmptyFile means an auxiliary input file (e.g. the quality
	// pattern file) was present but empty.
	KindEmptyFile
	// KindFieldCountMismatch means an auxiliary input file had the wrong
	// column count.
	KindFieldCountMismatch
)

func (k Kind) String() string {
	switch k {
	case KindNoFile:
		return "NoFile"
	case KindNoDirectory:
		return "NoDirectory"
	case KindOpenFailure:
		return "OpenFailure"
	case KindCloseFailure:
		return "CloseFailure"
	case KindWriteFailure:
		return "WriteFailure"
	case KindMemoryExhausted:
		return "MemoryExhausted"
	case KindGzipUnavailable:
		return "GzipUnavailable"
	case KindGzipOpenFailure:
		return "GzipOpenFailure"
	case KindGzipBufferTooSmall:
		return "GzipBufferTooSmall"
	case KindEmptyFile:
		return "EmptyFile"
	case KindFieldCountMismatch:
		return "FieldCountMismatch"
	default:
		return "Unknown"
	}
}

// kindError pairs a Kind with the wrapped error produced by errors.E, so
// that callers needing to branch on failure mode (rare; mostly tests) can
// recover it with AsKind.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WithKind wraps err (built with errors.E, typically) with a Kind tag.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// AsKind returns the Kind tagged onto err by WithKind, or KindUnknown if
// none was attached.
func AsKind(err error) Kind {
	var ke *kindError
	if stderrors.As(err, &ke) {
		return ke.kind
	}
	return KindUnknown
}
