// Package qualpattern implements C4: the FASTQ quality-string source.
//
// A run either fills every quality byte with one constant Phred character,
// or loads a single pattern line from an external file and truncates it to
// the read length, filling any tail beyond the pattern with the configured
// default character (the pattern is not repeated). Grounded on the repository's convention
// (encoding/fastq) of treating quality as a plain byte slice rather than a
// derived numeric type.
package qualpattern

import (
	"bufio"
	"context"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/grailbio/chipsim/model"
)

// Source fills quality byte slices for reads of varying length.
type Source struct {
	pattern []byte // nil means "no pattern; fill with def everywhere"
	def     byte
}

// NewConstant returns a Source that fills every base with def.
func NewConstant(def byte) *Source {
	return &Source{def: def}
}

// Load reads the first line of path as the quality pattern. An empty file
// is a KindEmptyFile error.
func Load(ctx context.Context, path string, def byte) (*Source, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, model.WithKind(model.KindNoFile, errors.Wrapf(err, "qualpattern: open %s", path))
	}
	defer f.Close(ctx) // nolint: errcheck

	scanner := bufio.NewScanner(f.Reader(ctx))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, model.WithKind(model.KindOpenFailure, errors.Wrapf(err, "qualpattern: read %s", path))
		}
		return nil, model.WithKind(model.KindEmptyFile, errors.Errorf("qualpattern: empty file %s", path))
	}
	line := scanner.Bytes()
	if len(line) == 0 {
		return nil, model.WithKind(model.KindEmptyFile, errors.Errorf("qualpattern: empty first line %s", path))
	}
	pattern := make([]byte, len(line))
	copy(pattern, line)
	return &Source{pattern: pattern, def: def}, nil
}

// Fill writes len(dst) quality bytes: dst[i] = pattern[i] for i within the
// loaded pattern's length, or def for i beyond it (including every position
// when no pattern was loaded).
func (s *Source) Fill(dst []byte) {
	n := copy(dst, s.pattern)
	for i := n; i < len(dst); i++ {
		dst[i] = s.def
	}
}
