// Package emitter implements C10: the ordered wiggle/bedgraph writer.
//
// Chromosomes are partitioned across worker threads (C13) and finish in
// whatever order their threads happen to complete, but bedgraph/wiggle
// output must appear in canonical chromosome order. Emitter buffers each
// finished chromosome's accumulated covmap/densmap state and releases it
// through a github.com/grailbio/base/syncqueue.OrderedQueue, exactly the
// pattern encoding/bam/shardedbam.go uses to serialize out-of-order shard
// compression back into an ordered BAM stream.
package emitter

import (
	"fmt"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/syncqueue"

	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/covmap"
	"github.com/grailbio/chipsim/densmap"
	"github.com/grailbio/chipsim/lineio"
	"github.com/grailbio/chipsim/model"
)

// Track selects which accumulator kind a Chrom holds.
type Track int

const (
	// TrackBedgraph holds a covmap (depth over intervals).
	TrackBedgraph Track = iota
	// TrackDensity holds a densmap (counts at points).
	TrackDensity
)

// Chrom is the per-chromosome accumulator state a worker thread fills in
// while processing its partition, then hands to Emitter.Finish.
type Chrom struct {
	Entry model.ChromEntry
	track Track
	Cov   *covmap.Map
	Dens  *densmap.Map
}

// NewBedgraphChrom returns a Chrom backed by a coverage map.
func NewBedgraphChrom(entry model.ChromEntry) *Chrom {
	return &Chrom{Entry: entry, track: TrackBedgraph, Cov: covmap.New()}
}

// NewDensityChrom returns a Chrom backed by a density map.
func NewDensityChrom(entry model.ChromEntry) *Chrom {
	return &Chrom{Entry: entry, track: TrackDensity, Dens: densmap.New()}
}

// Emitter serializes a sequence of Chrom values, released in any order via
// Finish, back into canonical-order text output on one BlockFile.
type Emitter struct {
	label string // track label, e.g. "fragment density", used in error context
	bf    *blockfile.BlockFile
	buf   *lineio.Buffer
	mu    *sync.Mutex
	queue *syncqueue.OrderedQueue

	wg       sync.WaitGroup
	writeErr errors.Once
}

// New returns an Emitter writing through bf, guarded by mu (nil for
// single-threaded runs), expecting nChrom chromosomes in canonical order
// (index 0..nChrom-1).
func New(label string, bf *blockfile.BlockFile, mu *sync.Mutex, nChrom int) *Emitter {
	e := &Emitter{
		label: label,
		bf:    bf,
		buf:   lineio.New(64*1024, '\t', bf),
		mu:    mu,
		queue: syncqueue.NewOrderedQueue(nChrom),
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.drain()
	}()
	return e
}

// Finish submits a completed chromosome at canonicalIndex for ordered
// release. It does not block on other chromosomes; it only blocks if the
// queue's buffer (sized nChrom) is already full, which cannot happen since
// every index is submitted at most once.
func (e *Emitter) Finish(canonicalIndex int, c *Chrom) error {
	return e.queue.Insert(canonicalIndex, c)
}

func (e *Emitter) drain() {
	for {
		entry, ok, err := e.queue.Next()
		if err != nil {
			e.writeErr.Set(errors.E(err, "emitter", e.label))
			return
		}
		if !ok {
			return
		}
		c := entry.(*Chrom)
		if err := e.writeChrom(c); err != nil {
			e.writeErr.Set(err)
			e.queue.Close(err) // nolint: errcheck
			return
		}
	}
}

func (e *Emitter) writeChrom(c *Chrom) error {
	if e.mu != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	switch c.track {
	case TrackBedgraph:
		return e.writeBedgraph(c)
	default:
		return e.writeDensity(c)
	}
}

func (e *Emitter) writeBedgraph(c *Chrom) error {
	type bound struct {
		pos   model.PosType
		depth int32
	}
	var bounds []bound
	c.Cov.Do(func(b covmap.Boundary) bool {
		bounds = append(bounds, bound{b.Pos, b.Depth})
		return true
	})
	for i, b := range bounds {
		end := c.Entry.Length
		if i+1 < len(bounds) {
			end = bounds[i+1].pos
		}
		if b.depth == 0 {
			continue
		}
		e.buf.SetOffset(0)
		e.buf.AddStr(c.Entry.Name, true)
		e.buf.AddInt(int64(b.pos), true)
		e.buf.AddInt(int64(end), true)
		e.buf.AddInt(int64(b.depth), false)
		if err := e.buf.CommitForward(0, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) writeDensity(c *Chrom) error {
	e.buf.SetOffset(0)
	e.buf.AddStr("variableStep", true)
	e.buf.AddStr(fmt.Sprintf("chrom=%s", c.Entry.Name), false)
	if err := e.buf.CommitForward(0, true); err != nil {
		return err
	}
	var writeErr error
	c.Dens.Do(func(p densmap.Point) bool {
		e.buf.SetOffset(0)
		e.buf.AddInt(int64(p.Pos)+1, true) // wiggle positions are 1-based
		e.buf.AddInt(int64(p.Count), false)
		if err := e.buf.CommitForward(0, true); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

// Close waits for every submitted chromosome to drain, then flushes and
// closes the underlying BlockFile (if this Emitter owns the primer).
func (e *Emitter) Close() error {
	closeErr := e.queue.Close(nil)
	e.wg.Wait()
	if err := e.writeErr.Err(); err != nil {
		return err
	}
	if closeErr != nil {
		return errors.E(closeErr, "emitter", e.label)
	}
	return e.bf.Close()
}
