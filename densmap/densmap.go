// Package densmap implements C9: the point-density accumulator behind the
// fragment-center and read-end wiggle tracks. Unlike covmap's interval
// depth, a density track only ever records discrete events at single
// positions, so the node value is a plain running count rather than a
// depth propagated from a predecessor. Grounded, like covmap, on
// github.com/biogo/store/llrb.Tree.
package densmap

import (
	"github.com/biogo/store/llrb"

	"github.com/grailbio/chipsim/model"
)

type node struct {
	pos   model.PosType
	count int32
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

// Map is an ordered position->count map.
type Map struct {
	tree llrb.Tree
}

// New returns an empty Map.
func New() *Map { return &Map{} }

// AddPoint increments the count recorded at pos by one.
func (m *Map) AddPoint(pos model.PosType) {
	probe := &node{pos: pos}
	if got := m.tree.Get(probe); got != nil {
		got.(*node).count++
		return
	}
	m.tree.Insert(&node{pos: pos, count: 1})
}

// Point is one (position, count) pair as emitted by Do.
type Point struct {
	Pos   model.PosType
	Count int32
}

// Do visits every recorded point in ascending position order, stopping
// early if fn returns false.
func (m *Map) Do(fn func(Point) bool) {
	m.tree.Do(func(c llrb.Comparable) bool {
		n := c.(*node)
		return !fn(Point{Pos: n.pos, Count: n.count})
	})
}

// Len returns the number of distinct recorded positions.
func (m *Map) Len() int { return m.tree.Len() }
