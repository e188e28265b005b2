// Package covmap implements C8: the coverage accumulator behind bedgraph
// output. It stores a sparse difference array, keyed by position in an
// ordered tree rather than a dense array over the whole chromosome: each
// node holds the NET CHANGE in depth at its position, and the depth in
// effect at any position is the running sum of every change up to and
// including it (spec.md §4.8). Two boundary nodes that land on the same
// position are merged by summing their deltas, and a node whose delta
// cancels to zero is dropped, so the tree never grows larger than twice
// the number of intervals recorded regardless of how much they overlap.
// Grounded on github.com/biogo/store/llrb.Tree, which the repository
// already uses for ordered-key lookups keyed by a small Comparable
// (encoding/bampair's shard_info.go, cmd/bio-bam-sort/sorter/sort.go).
package covmap

import (
	"github.com/biogo/store/llrb"

	"github.com/grailbio/chipsim/model"
)

type node struct {
	pos   model.PosType
	delta int32
}

func (n *node) Compare(c llrb.Comparable) int {
	o := c.(*node)
	switch {
	case n.pos < o.pos:
		return -1
	case n.pos > o.pos:
		return 1
	default:
		return 0
	}
}

// Map is an ordered position->depth map.
type Map struct {
	tree llrb.Tree
}

// New returns an empty Map.
func New() *Map { return &Map{} }

// addDelta folds d into the node at pos, inserting one if none exists yet,
// and removing it again if the fold brings its delta back to zero.
func (m *Map) addDelta(pos model.PosType, d int32) {
	probe := &node{pos: pos}
	if got := m.tree.Get(probe); got != nil {
		n := got.(*node)
		n.delta += d
		if n.delta == 0 {
			m.tree.Delete(probe)
		}
		return
	}
	if d != 0 {
		m.tree.Insert(&node{pos: pos, delta: d})
	}
}

// AddInterval records one more unit of depth across [s, e): the depth
// delta is +1 at s and -1 at e, per the standard difference-array
// technique for range-increment, point-query accumulation.
func (m *Map) AddInterval(s, e model.PosType) {
	if e <= s {
		return
	}
	m.addDelta(s, 1)
	m.addDelta(e, -1)
}

// Boundary is one (position, depth) pair as emitted by Do: depth is the
// cumulative depth that begins at Pos and holds until the next Boundary.
type Boundary struct {
	Pos   model.PosType
	Depth int32
}

// Do visits every recorded boundary in ascending position order, stopping
// early if fn returns false. The depth reported at each boundary is the
// running sum of every delta up to and including it.
func (m *Map) Do(fn func(Boundary) bool) {
	var running int32
	m.tree.Do(func(c llrb.Comparable) bool {
		n := c.(*node)
		running += n.delta
		return !fn(Boundary{Pos: n.pos, Depth: running})
	})
}

// Len returns the number of recorded boundaries.
func (m *Map) Len() int { return m.tree.Len() }
