package mutexset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSingleThreadedReturnsNil(t *testing.T) {
	s := New(false)
	assert.Nil(t, s.Get("fastq"))
	assert.Nil(t, s.Get("bed"))
}

func TestThreadedReturnsStableMutexPerName(t *testing.T) {
	s := New(true)
	m1 := s.Get("fastq")
	m2 := s.Get("fastq")
	assert.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

func TestThreadedDifferentNamesCanShareOrDifferBucket(t *testing.T) {
	s := New(true)
	m1 := s.Get("bedgraph")
	m2 := s.Get("fdensity")
	assert.NotNil(t, m1)
	assert.NotNil(t, m2)
	// Not asserting distinctness: two names may legitimately hash into the
	// same bucket. Only repeat lookups for the same name must be stable.
	assert.Same(t, m1, s.Get("bedgraph"))
	assert.Same(t, m2, s.Get("fdensity"))
}
