// Package readname implements C3: the per-record read-name generator.
// The head ("<tool>:chr<mark>") is fixed once per chromosome; the
// variable tail is formatted fresh for every read from a process-global
// atomic counter shared across every thread's clone (spec.md §4.3).
package readname

import (
	"strconv"
	"sync/atomic"

	"github.com/grailbio/chipsim/model"
)

// digitsOfUint64Max is len(strconv.FormatUint(math.MaxUint64, 10)).
const digitsOfUint64Max = 20

// Generator builds read names of the form:
//
//	CounterOnly: "<tool>:chr<mark>.<counter>"
//	SEPosition:  "<tool>:chr<mark>:<start>.<counter>"
//	PEPosition:  "<tool>:chr<mark>:<start>-<end>.<counter>"
//
// A Generator is not safe for concurrent use; per spec.md §9's resolution
// of the "same clone, concurrent callers" open question, one Generator is
// bound to exactly one worker thread (CloneForThread creates the other
// threads' instances), and NextName's returned slice is only valid until
// the next call on the same Generator.
type Generator struct {
	tool    string
	policy  model.ReadNamePolicy
	counter *uint64 // shared across every clone
	chrom   []byte  // "chr<mark>", set by SetChrom
	buf     []byte  // per-instance scratch, reused by NextName
	maxLen  int
}

// NewGenerator constructs the root Generator. maxChromMarkLen, maxStart,
// and maxEnd bound the widest chromosome name and coordinate this run will
// ever format, and are used only to size buf once so NextName never
// reallocates.
func NewGenerator(tool string, policy model.ReadNamePolicy, maxChromMarkLen int, maxStart, maxEnd uint32) *Generator {
	g := &Generator{
		tool:    tool,
		policy:  policy,
		counter: new(uint64),
	}
	g.maxLen = g.computeMaxLen(maxChromMarkLen, maxStart, maxEnd)
	g.buf = make([]byte, 0, g.maxLen)
	return g
}

func (g *Generator) computeMaxLen(maxChromMarkLen int, maxStart, maxEnd uint32) int {
	_ = maxEnd
	n := len(g.tool) + len(":chr") + maxChromMarkLen
	switch g.policy {
	case model.SEPosition:
		n += 1 + digitsOf(maxStart) // ":" + start
	case model.PEPosition:
		n += 1 + digitsOf(maxStart) + 1 + digitsOf(maxEnd) // ":" + start + "-" + end
	}
	n += 1 + digitsOfUint64Max // "." + counter
	n += 2                     // "/1" or "/2", appended by the caller
	return n
}

func digitsOf(v uint32) int {
	return len(strconv.FormatUint(uint64(v), 10))
}

// CloneForThread returns a Generator for another worker thread: same tool
// name, policy, and the same shared counter, but its own chromosome mark
// and formatting buffer.
func (g *Generator) CloneForThread() *Generator {
	return &Generator{
		tool:    g.tool,
		policy:  g.policy,
		counter: g.counter,
		buf:     make([]byte, 0, g.maxLen),
		maxLen:  g.maxLen,
	}
}

// SetChrom updates the chromosome portion of the head, e.g. "1" or "X".
func (g *Generator) SetChrom(mark string) {
	g.chrom = append(g.chrom[:0], "chr"...)
	g.chrom = append(g.chrom, mark...)
}

// NextName formats the name for one consumption of the global counter
// (one SE read, or one PE mate pair) and returns it along with the
// counter value used. The returned slice is reused by the next call on
// this Generator; copy it if it must outlive that call.
func (g *Generator) NextName(frag model.Fragment) ([]byte, uint64) {
	counter := atomic.AddUint64(g.counter, 1)
	g.buf = g.buf[:0]
	g.buf = append(g.buf, g.tool...)
	g.buf = append(g.buf, ':')
	g.buf = append(g.buf, g.chrom...)
	switch g.policy {
	case model.SEPosition:
		g.buf = append(g.buf, ':')
		g.buf = strconv.AppendInt(g.buf, int64(frag.Start), 10)
	case model.PEPosition:
		g.buf = append(g.buf, ':')
		g.buf = strconv.AppendInt(g.buf, int64(frag.Start), 10)
		g.buf = append(g.buf, '-')
		g.buf = strconv.AppendInt(g.buf, int64(frag.End), 10)
	}
	g.buf = append(g.buf, '.')
	g.buf = strconv.AppendUint(g.buf, counter, 10)
	return g.buf, counter
}

// Counter returns the current value of the shared counter, mainly for
// tests asserting monotonicity/contiguity (spec.md §8).
func (g *Generator) Counter() uint64 {
	return atomic.LoadUint64(g.counter)
}
