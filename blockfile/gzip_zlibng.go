//go:build zlibng
// +build zlibng

package blockfile

import (
	"io"

	"github.com/yasushi-saito/zlibng"
)

func init() {
	zlibAvailable = true
	newZlibCompressor = func(w io.Writer) (compressor, error) {
		return zlibng.NewWriterLevel(w, zlibng.DefaultCompression)
	}
}
