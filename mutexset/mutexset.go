// Package mutexset implements C14: a named mutex registry.
//
// Every output family (FASTQ, BED, SAM, bedgraph, the two wiggle tracks)
// that can be written concurrently by several worker threads needs exactly
// one mutex shared by every BlockFile clone writing that family, so two
// threads never interleave a flush. Families are looked up by name and
// sharded across a fixed set of buckets via blainsmith.com/go/seahash,
// giving unrelated families independent locks without growing a map entry
// per family under contention.
package mutexset

import (
	"sync"

	"blainsmith.com/go/seahash"
)

// numBuckets is the number of independent mutex buckets. Small and fixed:
// the number of output families in any one run is a handful, so collisions
// are cheap and a growing map would be unjustified.
const numBuckets = 16

// Set hands out one *sync.Mutex per family name. When Threaded is false
// (single-threaded run), Get returns nil and callers are expected to skip
// locking entirely, matching spec.md §4.14's "no-op when the program runs
// single-threaded".
type Set struct {
	threaded bool
	buckets  [numBuckets]sync.Mutex
	names    map[string]*sync.Mutex
	mu       sync.Mutex
}

// New returns a Set. threaded selects whether Get returns real mutexes or
// nil.
func New(threaded bool) *Set {
	return &Set{threaded: threaded, names: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for family name, creating and caching it if this is
// the first request for that name.
func (s *Set) Get(name string) *sync.Mutex {
	if !s.threaded {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.names[name]; ok {
		return m
	}
	h := seahash.Sum64([]byte(name))
	m := &s.buckets[h%numBuckets]
	s.names[name] = m
	return m
}
