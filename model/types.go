// Package model holds the data types and collaborator interfaces shared by
// every component of the output pipeline: the wire-level Fragment/Read
// pair, the chromosome identifier space, the external collaborators
// (ChromSizes, RefSeq) the simulator and FASTA loader satisfy, and the
// run-wide Config that replaces the mutable statics the original design
// warned against (spec.md §9).
package model

import "github.com/grailbio/chipsim/interval"

// PosType is re-exported from interval so callers of this package don't
// need a second import for the common case.
type PosType = interval.PosType

// ChromID is a stable integer identifying a chromosome: numbered
// chromosomes first (0-based, ascending), followed by the heterosomes in
// the fixed order X, Y, M.
type ChromID uint32

// Fragment is a half-open genomic interval [Start, End) representing one
// simulated DNA molecule on some chromosome.  End must be > Start.
type Fragment struct {
	Start PosType
	End   PosType
}

// Len returns the fragment length, End - Start.
func (f Fragment) Len() PosType { return f.End - f.Start }

// Center returns the integer-division (even-biased) midpoint of the
// fragment, used by the density accumulator (C9) for fragment-center
// tracks.
func (f Fragment) Center() PosType {
	return f.Start + (f.End-f.Start)/2
}

// Read is the sequenced end of a Fragment: a byte slice of reference
// sequence, its 5' genomic position, its length, and its strand.  Reverse
// reads store the 5' position (Pos = fragment.End - Len); the sequence is
// reverse-complemented at output time by the writer, never pre-complemented
// here (spec.md §3).
type Read struct {
	Seq     []byte
	Pos     PosType
	Len     uint16
	Reverse bool
}

// End returns the read's exclusive end coordinate, Pos + Len.
func (r Read) End() PosType { return r.Pos + PosType(r.Len) }

// ChromEntry describes one chromosome as the simulator's reference-size
// table knows it: its stable ID, display name (e.g. "1", "X", "M"),
// length, and effective length (length minus undefined/'N' regions), used
// by the chromosome partitioner (C13).
type ChromEntry struct {
	ID              ChromID
	Name            string
	Length          PosType
	EffectiveLength PosType
}

// ChromSizes is implemented by the reference-sequence loader (out of
// scope, §1) and consumed by the SAM header writer, the partitioner, and
// the ordered emitter.  Entries must be returned in canonical order:
// numbered chromosomes ascending, then X, Y, M.
type ChromSizes interface {
	// Entries returns every chromosome, in canonical order.
	Entries() []ChromEntry
}

// RefSeq is implemented by the reference-sequence loader and consumed by
// the composite output to materialize read sequence from a fragment.
type RefSeq interface {
	// ID returns the chromosome this RefSeq instance serves.
	ID() ChromID
	// Seq returns length bytes of reference sequence starting at pos, or
	// nil if pos+length exceeds the chromosome's length.
	Seq(pos PosType, length int) []byte
}
