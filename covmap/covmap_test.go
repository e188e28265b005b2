package covmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(m *Map) []Boundary {
	var out []Boundary
	m.Do(func(b Boundary) bool {
		out = append(out, b)
		return true
	})
	return out
}

func TestAddIntervalSingle(t *testing.T) {
	m := New()
	m.AddInterval(10, 20)
	assert.Equal(t, []Boundary{{10, 1}, {20, 0}}, collect(m))
}

func TestAddIntervalOverlapping(t *testing.T) {
	m := New()
	m.AddInterval(10, 20)
	m.AddInterval(15, 25)
	assert.Equal(t, []Boundary{
		{10, 1}, {15, 2}, {20, 1}, {25, 0},
	}, collect(m))
}

func TestAddIntervalIdenticalMergesToRedundantFree(t *testing.T) {
	m := New()
	m.AddInterval(10, 20)
	m.AddInterval(10, 20)
	assert.Equal(t, []Boundary{{10, 2}, {20, 0}}, collect(m))
}

func TestAddIntervalAdjacentNoGap(t *testing.T) {
	m := New()
	m.AddInterval(10, 20)
	m.AddInterval(20, 30)
	// Adjacent, non-overlapping intervals at the same depth collapse the
	// shared boundary rather than leaving a redundant depth-1 node at 20.
	assert.Equal(t, []Boundary{{10, 1}, {30, 0}}, collect(m))
}

func TestAddIntervalEmptyIsNoop(t *testing.T) {
	m := New()
	m.AddInterval(10, 10)
	m.AddInterval(20, 10)
	assert.Equal(t, 0, m.Len())
}

func TestAddIntervalNested(t *testing.T) {
	m := New()
	m.AddInterval(0, 100)
	m.AddInterval(40, 60)
	assert.Equal(t, []Boundary{
		{0, 1}, {40, 2}, {60, 1}, {100, 0},
	}, collect(m))
}
