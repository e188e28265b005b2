// Package bedio implements C6: the six-column BED alignment writer.
//
// The chromosome column is set once per chromosome (SetChrom) and the
// remaining five columns — start, end, name, score, strand — are composed
// fresh for every read with lineio.Buffer's forward path, since BED's
// name column carries the full variable-length read name and so can't be
// patched into a truly fixed-width template (contrast samio's fixed-length
// fast path, spec.md §4.7). The name itself is generated once by the
// caller (composite, C12) and shared across every enabled output family.
package bedio

import (
	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/lineio"
	"github.com/grailbio/chipsim/model"
)

const lineBufferSize = 4096

// Writer emits BED records.
type Writer struct {
	buf   *lineio.Buffer
	chrom string
	mapQ  int
}

// New returns a Writer backed by bf.
func New(bf *blockfile.BlockFile, mapQ int) *Writer {
	return &Writer{buf: lineio.New(lineBufferSize, '\t', bf), mapQ: mapQ}
}

// SetChrom sets the chromosome name column for every subsequent WriteRead.
func (w *Writer) SetChrom(name string) { w.chrom = name }

// WriteRead writes one BED record for r, named name.
func (w *Writer) WriteRead(name []byte, r model.Read) error {
	w.buf.SetOffset(0)
	w.buf.AddStr(w.chrom, true)
	w.buf.AddInt(int64(r.Pos), true)
	w.buf.AddInt(int64(r.End()), true)
	w.buf.AddChars(name, true)
	w.buf.AddInt(int64(w.mapQ), true)
	strand := byte('+')
	if r.Reverse {
		strand = '-'
	}
	w.buf.AddChar(strand, false)
	return w.buf.CommitForward(0, true)
}
