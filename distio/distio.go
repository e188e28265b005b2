// Package distio implements C11: the fragment-length and read-length
// distribution reports.
//
// Each is a simple length->frequency histogram, accumulated lock-free via
// atomic counters indexed by length (so every worker thread can record
// directly with no shared mutex), and written out once at shutdown. A
// histogram is a supplementary artifact: if writing it fails, the run
// reports the failure through WarnFunc rather than raising it, since by
// the time distio.Write runs every other output has already succeeded and
// losing the distribution report alone shouldn't fail the whole run (see
// DESIGN.md).
package distio

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"

	"github.com/grailbio/chipsim/model"
)

// WarnFunc receives a non-fatal diagnostic. Callers that don't care can
// pass a no-op.
type WarnFunc func(format string, args ...interface{})

// Histogram accumulates length frequencies with no locking: Record adds to
// a fixed-size bucket array sized maxLen+1 up front, so every call is a
// single atomic add.
type Histogram struct {
	buckets []int64 // atomically updated
	maxLen  int
	name    string // "fragment length" / "read length", for the report header
}

// NewHistogram returns a Histogram that accepts lengths in [0, maxLen].
func NewHistogram(name string, maxLen int) *Histogram {
	return &Histogram{buckets: make([]int64, maxLen+1), maxLen: maxLen, name: name}
}

// Record adds one observation of length to the histogram. Lengths beyond
// maxLen are clamped into the last bucket rather than dropped, so the
// total observation count reported always matches the number of Record
// calls.
func (h *Histogram) Record(length int) {
	if length < 0 {
		length = 0
	}
	if length > h.maxLen {
		length = h.maxLen
	}
	atomic.AddInt64(&h.buckets[length], 1)
}

// Write emits the histogram as two tab-separated columns (length, count)
// for every length with a nonzero count, to path. A write failure is
// reported via warn and does not return an error, matching spec.md §4.11's
// "supplementary, does not fail the run" contract; Write does return an
// error for a failure to even open the output file, since that's a
// configuration problem the caller should be able to detect in tests.
func Write(ctx context.Context, path string, h *Histogram, warn WarnFunc) error {
	f, err := file.Create(ctx, path)
	if err != nil {
		return model.WithKind(model.KindOpenFailure, errors.E(err, "distio: create", path))
	}
	w := f.Writer(ctx)
	type row struct {
		length int
		count  int64
	}
	var rows []row
	for length, count := range h.buckets {
		if count == 0 {
			continue
		}
		rows = append(rows, row{length, count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].length < rows[j].length })

	var lineBuf []byte
	writeFailed := false
	for _, r := range rows {
		lineBuf = lineBuf[:0]
		lineBuf = appendInt(lineBuf, int64(r.length))
		lineBuf = append(lineBuf, '\t')
		lineBuf = appendInt(lineBuf, r.count)
		lineBuf = append(lineBuf, '\n')
		if _, err := w.Write(lineBuf); err != nil {
			warn("distio: write %s (%s): %v", path, h.name, err)
			writeFailed = true
			break
		}
	}
	if cerr := f.Close(ctx); cerr != nil {
		warn("distio: close %s (%s): %v", path, h.name, cerr)
	}
	if writeFailed {
		return nil
	}
	return nil
}

func appendInt(dst []byte, v int64) []byte {
	var scratch [20]byte
	n := len(scratch)
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		n--
		scratch[n] = '0'
	}
	for v > 0 {
		n--
		scratch[n] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		n--
		scratch[n] = '-'
	}
	return append(dst, scratch[n:]...)
}
