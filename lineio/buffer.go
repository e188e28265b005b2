// Package lineio implements C2: a fixed-width text record builder with a
// bidirectional cursor, used by every record writer (FASTQ, BED, SAM) to
// assemble one line without per-field allocation.
//
// The buffer is pre-filled with the field delimiter so a fixed-column
// writer can overwrite only the slots that vary between records while
// every untouched inter-field byte already carries the delimiter
// (spec.md §4.2). Forward operations (Add*) move the cursor right and
// build a record left-to-right; backward operations (Add*Back) move the
// cursor left, letting a writer patch a record right-to-left into a
// pre-built template — the technique spec.md §4.7 calls out for SAM's
// fixed-length fast path. The style (a small on-stack scratch array for
// integer/float formatting, rather than fmt.Sprintf) follows
// encoding/bam/marshal.go's binaryWriter.
package lineio

import (
	"strconv"

	"github.com/grailbio/chipsim/blockfile"
)

// Buffer assembles one text record at a time. It is not safe for
// concurrent use; each worker thread (or each BlockFile clone) owns one.
type Buffer struct {
	data   []byte
	size   int
	cursor int
	delim  byte
	sink   *blockfile.BlockFile
	scratch [32]byte
}

// New returns a Buffer of the given size, pre-filled with delim, writing
// committed records to sink.
func New(size int, delim byte, sink *blockfile.BlockFile) *Buffer {
	b := &Buffer{
		data:  make([]byte, size),
		size:  size,
		delim: delim,
		sink:  sink,
	}
	b.fill()
	return b
}

func (b *Buffer) fill() {
	for i := range b.data {
		b.data[i] = b.delim
	}
}

// Refill re-pre-fills the whole buffer with the delimiter. Call it once
// after building a fixed template (so unused slots default to the
// delimiter) and before the template's immutable bytes are written; it is
// not meant to be called per-record.
func (b *Buffer) Refill() { b.fill() }

// Bytes returns the full backing array, for callers (typically fixed-length
// writers) that need to write directly into known offsets when building
// the initial template.
func (b *Buffer) Bytes() []byte { return b.data }

// Delim returns the configured field delimiter.
func (b *Buffer) Delim() byte { return b.delim }

// SetOffset moves the cursor to an absolute position.
func (b *Buffer) SetOffset(p int) { b.cursor = p }

// IncrOffset moves the cursor right by n.
func (b *Buffer) IncrOffset(n int) { b.cursor += n }

// DecrOffset moves the cursor left by one.
func (b *Buffer) DecrOffset() { b.cursor-- }

// CurrentOffset returns the cursor's current position.
func (b *Buffer) CurrentOffset() int { return b.cursor }

// --- Forward composition: cursor moves right. ---

// AddChars appends raw bytes, optionally followed by the delimiter.
func (b *Buffer) AddChars(src []byte, withDelim bool) {
	n := copy(b.data[b.cursor:], src)
	b.cursor += n
	if withDelim {
		b.data[b.cursor] = b.delim
		b.cursor++
	}
}

// AddStr appends a string, optionally followed by the delimiter.
func (b *Buffer) AddStr(s string, withDelim bool) {
	n := copy(b.data[b.cursor:], s)
	b.cursor += n
	if withDelim {
		b.data[b.cursor] = b.delim
		b.cursor++
	}
}

// AddChar appends a single byte, optionally followed by the delimiter.
func (b *Buffer) AddChar(c byte, withDelim bool) {
	b.data[b.cursor] = c
	b.cursor++
	if withDelim {
		b.data[b.cursor] = b.delim
		b.cursor++
	}
}

// AddInt appends the base-10 representation of i, optionally followed by
// the delimiter. Formatting uses an on-stack scratch array, matching the
// low-allocation style of encoding/bam/marshal.go's binaryWriter.
func (b *Buffer) AddInt(i int64, withDelim bool) {
	out := strconv.AppendInt(b.scratch[:0], i, 10)
	b.AddChars(out, withDelim)
}

// AddFloat appends f formatted with prec digits after the decimal point,
// optionally followed by the delimiter.
func (b *Buffer) AddFloat(f float64, prec int, withDelim bool) {
	out := strconv.AppendFloat(b.scratch[:0], f, 'f', prec, 64)
	b.AddChars(out, withDelim)
}

// AddInts appends each value in order, each followed by the delimiter
// except (unless withDelim) the last.
func (b *Buffer) AddInts(withDelim bool, values ...int64) {
	for i, v := range values {
		last := i == len(values)-1
		b.AddInt(v, !last || withDelim)
	}
}

// --- Backward composition: cursor moves left. ---
//
// Every backward insert writes payload immediately to the left of the
// content already at the cursor, then writes the delimiter just before
// that payload, then moves the cursor onto that delimiter — i.e. the
// cursor decreases by len(payload)+1. This keeps the invariant
// that [cursor, size) is always exactly the delimited record built so
// far, which CommitBackward depends on.

// AddCharsBack prepends raw bytes plus a leading delimiter.
func (b *Buffer) AddCharsBack(src []byte) {
	n := len(src)
	b.cursor -= n + 1
	b.data[b.cursor] = b.delim
	copy(b.data[b.cursor+1:], src)
}

// AddStrBack prepends a string plus a leading delimiter.
func (b *Buffer) AddStrBack(s string) {
	n := len(s)
	b.cursor -= n + 1
	b.data[b.cursor] = b.delim
	copy(b.data[b.cursor+1:], s)
}

// AddCharBack prepends a single byte plus a leading delimiter.
func (b *Buffer) AddCharBack(c byte) {
	b.cursor -= 2
	b.data[b.cursor] = b.delim
	b.data[b.cursor+1] = c
}

// AddIntBack prepends the base-10 representation of i plus a leading
// delimiter.
func (b *Buffer) AddIntBack(i int64) {
	out := strconv.AppendInt(b.scratch[:0], i, 10)
	b.AddCharsBack(out)
}

// AddCharsBackHead prepends raw bytes with no leading delimiter. It is the
// terminal call in a backward-composed record, writing the leftmost column
// (e.g. SAM's QNAME), which has no column to its left to be delimited from.
func (b *Buffer) AddCharsBackHead(src []byte) {
	n := len(src)
	b.cursor -= n
	copy(b.data[b.cursor:], src)
}

// --- Commit. ---

// CommitForward writes bytes[0:cursor] to the sink block file, then resets
// the cursor to nextOffset so the buffer is ready for the next record.
func (b *Buffer) CommitForward(nextOffset int, closeLine bool) error {
	err := b.sink.WriteRecord(b.data[:b.cursor], closeLine)
	b.cursor = nextOffset
	return err
}

// CommitBackward writes bytes[cursor:size] to the sink block file. It does
// not reset the cursor; callers patching a fixed template call SetOffset
// again before the next record.
func (b *Buffer) CommitBackward() error {
	return b.sink.WriteRecord(b.data[b.cursor:b.size], false)
}
