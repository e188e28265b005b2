// Package samio implements C7: the SAM alignment writer.
//
// Per-record assembly runs right-to-left with lineio.Buffer's backward
// composition, in exactly SAM's reverse column order — QUAL, SEQ, TLEN,
// PNEXT, RNEXT, CIGAR, MAPQ, POS, RNAME, FLAG, QNAME — the technique
// spec.md §4.7 singles out as the fixed-length fast path, since for a
// fixed read length CIGAR and the SEQ/QUAL widths never change record to
// record. POS and PNEXT are written 1-based, matching the SAM
// specification.
package samio

import (
	"fmt"

	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/lineio"
	"github.com/grailbio/chipsim/model"
	"github.com/grailbio/chipsim/qualpattern"
	"github.com/grailbio/chipsim/sequtil"
)

const lineBufferSize = 4096

// SAM FLAG bits (SAM specification §1.4).
const (
	flagPaired        = 1
	flagProperPair    = 2
	flagReverse       = 16
	flagMateReverse   = 32
	flagFirstInPair   = 64
	flagSecondInPair  = 128
)

// WriteHeader writes the @HD, @SQ, and @PG header lines to bf.
func WriteHeader(bf *blockfile.BlockFile, tool, version, cmdline string, chroms []model.ChromEntry) error {
	buf := lineio.New(lineBufferSize, '\t', bf)
	buf.SetOffset(0)
	buf.AddStr("@HD", true)
	buf.AddStr("VN:1.6", true)
	buf.AddStr("SO:unsorted", false)
	if err := buf.CommitForward(0, true); err != nil {
		return err
	}
	for _, c := range chroms {
		buf.SetOffset(0)
		buf.AddStr("@SQ", true)
		buf.AddStr(fmt.Sprintf("SN:%s", c.Name), true)
		buf.AddStr(fmt.Sprintf("LN:%d", c.Length), false)
		if err := buf.CommitForward(0, true); err != nil {
			return err
		}
	}
	buf.SetOffset(0)
	buf.AddStr("@PG", true)
	buf.AddStr(fmt.Sprintf("ID:%s", tool), true)
	buf.AddStr(fmt.Sprintf("PN:%s", tool), true)
	buf.AddStr(fmt.Sprintf("VN:%s", version), true)
	buf.AddStr(fmt.Sprintf("CL:%s", cmdline), false)
	return buf.CommitForward(0, true)
}

// Writer emits SAM alignment records.
type Writer struct {
	buf     *lineio.Buffer
	qual    *qualpattern.Source
	mapQ    int
	chrom   string
	revcomp []byte
	qbuf    []byte
}

// New returns a Writer backed by bf.
func New(bf *blockfile.BlockFile, qual *qualpattern.Source, mapQ int) *Writer {
	return &Writer{buf: lineio.New(lineBufferSize, '\t', bf), qual: qual, mapQ: mapQ}
}

// SetChrom sets the RNAME column for every subsequent write.
func (w *Writer) SetChrom(name string) { w.chrom = name }

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

func (w *Writer) seqAndQual(r model.Read) (seq, qual []byte) {
	seq = r.Seq
	if r.Reverse {
		w.ensureScratch(len(r.Seq))
		sequtil.ReverseComplementInto(w.revcomp[:len(r.Seq)], r.Seq)
		seq = w.revcomp[:len(r.Seq)]
	}
	w.ensureScratch(len(seq))
	w.qual.Fill(w.qbuf[:len(seq)])
	return seq, w.qbuf[:len(seq)]
}

// writeRecord assembles one SAM line right-to-left. qname is the complete
// QNAME column value (mate suffix, if any, already appended) — it must be
// built as a single payload since AddCharsBack's leading delimiter is the
// inter-column tab, not a valid separator inside QNAME itself.
func (w *Writer) writeRecord(qname []byte, flag int, pos model.PosType, rnext string, pnext, tlen int64, r model.Read) error {
	seq, qual := w.seqAndQual(r)

	// The buffer's last byte is the record's terminating newline; every
	// column is prepended to its left.
	end := len(w.buf.Bytes()) - 1
	w.buf.Bytes()[end] = '\n'
	w.buf.SetOffset(end)
	w.buf.AddCharsBack(qual)
	w.buf.AddCharsBack(seq)
	w.buf.AddIntBack(tlen)
	w.buf.AddIntBack(pnext)
	w.buf.AddStrBack(rnext)
	w.buf.AddStrBack(fmt.Sprintf("%dM", r.Len))
	w.buf.AddIntBack(int64(w.mapQ))
	w.buf.AddIntBack(int64(pos) + 1)
	w.buf.AddStrBack(w.chrom)
	w.buf.AddIntBack(int64(flag))
	w.buf.AddCharsBackHead(qname)
	return w.buf.CommitBackward()
}

// WriteSingle writes one single-end SAM record under name.
func (w *Writer) WriteSingle(name []byte, r model.Read) error {
	flag := 0
	if r.Reverse {
		flag |= flagReverse
	}
	return w.writeRecord(name, flag, r.Pos, "*", 0, 0, r)
}

// WritePair writes both mates of a paired-end record under name, appending
// the "/1"/"/2" suffix to each mate's QNAME, and computing reciprocal
// RNEXT/PNEXT/TLEN fields. frag is the originating fragment, needed for
// TLEN.
func (w *Writer) WritePair(frag model.Fragment, name []byte, r1, r2 model.Read) error {
	name1 := append(append([]byte(nil), name...), '/', '1')
	name2 := append(append([]byte(nil), name...), '/', '2')

	tlen := int64(frag.Len())
	leftmost := r1.Pos <= r2.Pos

	flag1 := flagPaired | flagProperPair | flagFirstInPair
	if r1.Reverse {
		flag1 |= flagReverse
	}
	if r2.Reverse {
		flag1 |= flagMateReverse
	}
	tlen1 := tlen
	if !leftmost {
		tlen1 = -tlen
	}
	if err := w.writeRecord(name1, flag1, r1.Pos, "=", int64(r2.Pos)+1, tlen1, r1); err != nil {
		return err
	}

	flag2 := flagPaired | flagProperPair | flagSecondInPair
	if r2.Reverse {
		flag2 |= flagReverse
	}
	if r1.Reverse {
		flag2 |= flagMateReverse
	}
	tlen2 := tlen
	if leftmost {
		tlen2 = -tlen
	}
	return w.writeRecord(name2, flag2, r2.Pos, "=", int64(r1.Pos)+1, tlen2, r2)
}
