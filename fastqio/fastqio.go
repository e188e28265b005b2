// Package fastqio implements C5: the FASTQ writer.
//
// Each record is four lines — "@name", sequence, "+", quality — built with
// lineio.Buffer's forward composition and flushed one line at a time
// through a blockfile.BlockFile. The read name is generated once by the
// caller (composite, C12) and shared across every enabled output family so
// a single counter consumption names the same logical read everywhere; a
// paired-end Writer holds two independent Buffer/BlockFile pairs (mate 1
// and mate 2) and appends the "/1"/"/2" suffix itself (spec.md §4.5).
package fastqio

import (
	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/lineio"
	"github.com/grailbio/chipsim/model"
	"github.com/grailbio/chipsim/qualpattern"
	"github.com/grailbio/chipsim/sequtil"
)

const lineBufferSize = 4096

// Writer emits FASTQ records for either single-end or paired-end reads.
type Writer struct {
	mate1, mate2 *lineio.Buffer // mate2 is nil for single-end
	qual         *qualpattern.Source
	revcomp      []byte
	qbuf         []byte
}

// NewSingleEnd returns a Writer for single-end reads, backed by one
// BlockFile.
func NewSingleEnd(bf *blockfile.BlockFile, qual *qualpattern.Source) *Writer {
	return &Writer{
		mate1: lineio.New(lineBufferSize, '\n', bf),
		qual:  qual,
	}
}

// NewPairedEnd returns a Writer for paired-end reads, backed by two
// BlockFiles, one per mate file.
func NewPairedEnd(bf1, bf2 *blockfile.BlockFile, qual *qualpattern.Source) *Writer {
	return &Writer{
		mate1: lineio.New(lineBufferSize, '\n', bf1),
		mate2: lineio.New(lineBufferSize, '\n', bf2),
		qual:  qual,
	}
}

func (w *Writer) ensureScratch(n int) {
	if cap(w.revcomp) < n {
		w.revcomp = make([]byte, n)
	}
	w.revcomp = w.revcomp[:n]
	if cap(w.qbuf) < n {
		w.qbuf = make([]byte, n)
	}
	w.qbuf = w.qbuf[:n]
}

func (w *Writer) writeRecord(buf *lineio.Buffer, name []byte, mate byte, r model.Read) error {
	buf.SetOffset(0)
	buf.AddChar('@', false)
	buf.AddChars(name, false)
	if mate != 0 {
		buf.AddChar('/', false)
		buf.AddChar(mate, false)
	}
	if err := buf.CommitForward(0, true); err != nil {
		return err
	}

	seq := r.Seq
	if r.Reverse {
		w.ensureScratch(len(r.Seq))
		sequtil.ReverseComplementInto(w.revcomp[:len(r.Seq)], r.Seq)
		seq = w.revcomp[:len(r.Seq)]
	}
	buf.SetOffset(0)
	buf.AddChars(seq, false)
	if err := buf.CommitForward(0, true); err != nil {
		return err
	}

	buf.SetOffset(0)
	buf.AddChar('+', false)
	if err := buf.CommitForward(0, true); err != nil {
		return err
	}

	w.ensureScratch(len(seq))
	w.qual.Fill(w.qbuf[:len(seq)])
	buf.SetOffset(0)
	buf.AddChars(w.qbuf[:len(seq)], false)
	return buf.CommitForward(0, true)
}

// WriteSingle writes one single-end FASTQ record under name.
func (w *Writer) WriteSingle(name []byte, r model.Read) error {
	return w.writeRecord(w.mate1, name, 0, r)
}

// WritePair writes both mates of a paired-end record under name, appending
// the "/1"/"/2" suffix to each mate's QNAME.
func (w *Writer) WritePair(name []byte, r1, r2 model.Read) error {
	if err := w.writeRecord(w.mate1, name, '1', r1); err != nil {
		return err
	}
	return w.writeRecord(w.mate2, name, '2', r2)
}
