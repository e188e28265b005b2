package blockfile

import (
	"io"

	"github.com/grailbio/base/errors"
	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/chipsim/model"
)

// compressor is satisfied by both the default pure-Go gzip.Writer and the
// optional cgo-backed zlibng.Writer (gzip_zlibng.go, build tag "zlibng").
type compressor interface {
	io.Writer
	Close() error
}

// Backend selects which gzip implementation a zipped BlockFile uses.
type Backend int

const (
	// BackendGzip uses klauspost/compress/gzip: pure Go, always available.
	// This is the default.
	BackendGzip Backend = iota
	// BackendZlib uses yasushi-saito/zlibng's cgo binding to zlib-ng, for
	// builds that want native zlib's speed. Only available in binaries
	// built with the "zlibng" build tag (see gzip_zlibng.go); requesting
	// it otherwise is exactly the GzipUnavailable case of spec.md §7.
	BackendZlib
)

// zlibAvailable and newZlibCompressor are overridden by gzip_zlibng.go's
// init() when the "zlibng" build tag is set.
var (
	zlibAvailable     = false
	newZlibCompressor func(w io.Writer) (compressor, error)
)

func newCompressor(backend Backend, w io.Writer) (compressor, error) {
	switch backend {
	case BackendZlib:
		if !zlibAvailable {
			return nil, model.WithKind(model.KindGzipUnavailable,
				errors.E("blockfile: built without zlibng support; BackendZlib unavailable"))
		}
		c, err := newZlibCompressor(w)
		if err != nil {
			return nil, model.WithKind(model.KindGzipOpenFailure, errors.E(err, "zlibng writer"))
		}
		return c, nil
	default:
		gz, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		if err != nil {
			return nil, model.WithKind(model.KindGzipOpenFailure, errors.E(err, "gzip.NewWriterLevel"))
		}
		return gz, nil
	}
}
