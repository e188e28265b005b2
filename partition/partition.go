// Package partition implements C13: dividing the chromosome list across a
// fixed number of worker threads so every thread does roughly the same
// amount of work.
//
// Four algorithms are offered, in increasing order of balance quality and
// cost:
//
//   - RoundRobinGreedy deals chromosomes to buckets in serpentine order —
//     forward through bucket 0..n-1, then backward n-1..0, back and forth —
//     rather than plain modulo cycling, so that consecutive (already
//     size-sorted) entries land on alternating sides of the sweep instead
//     of always drifting in the same direction. Cheapest and least
//     balanced of the four.
//   - ClassicGreedy always adds the next (largest-first) chromosome to the
//     currently lightest bucket — the standard greedy number-partitioning
//     heuristic.
//   - StuffingGreedy fills one bucket at a time up to the average before
//     moving to the next, trading balance for a single linear pass.
//   - DifferencingSearchTree starts from ClassicGreedy's result and
//     performs a bounded local search modeled on the Karmarkar-Karp
//     differencing method, moving one chromosome at a time from the
//     heaviest to the lightest bucket as long as doing so shrinks the
//     spread; the best assignment found is kept as a standby snapshot in
//     case a later move makes things worse, and repeated calls with the
//     same chromosome set are served from a signature-keyed cache (§below)
//     rather than re-searched.
//
// The repeat-detection signature is a github.com/dgryski/go-farm hash of
// each chromosome's (ID, EffectiveLength) pair, folded together with
// farm.Hash64WithSeed — the same library the repository already uses for
// fast, non-cryptographic hashing (see mutexset's use of seahash for the
// complementary sharding role).
package partition

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/dgryski/go-farm"
	"github.com/pkg/errors"

	"github.com/grailbio/chipsim/model"
)

// ValidateEntries checks that a chromosome table is sane to partition:
// every EffectiveLength non-negative and no duplicate ChromID. This is a
// construction-time check, not a hot-path one, so it favors a readable
// wrapped error over the latched-error style the writers use.
func ValidateEntries(entries []model.ChromEntry) error {
	seen := make(map[model.ChromID]bool, len(entries))
	for _, e := range entries {
		if e.EffectiveLength < 0 {
			return errors.Errorf("partition: chromosome %q has negative effective length %d", e.Name, e.EffectiveLength)
		}
		if seen[e.ID] {
			return errors.Errorf("partition: duplicate chromosome id %d (%q)", e.ID, e.Name)
		}
		seen[e.ID] = true
	}
	return nil
}

// Algorithm selects a partitioning strategy.
type Algorithm int

const (
	RoundRobinGreedy Algorithm = iota
	ClassicGreedy
	StuffingGreedy
	DifferencingSearchTree
)

// Partitioner partitions chromosome lists, caching DifferencingSearchTree
// results by input signature.
type Partitioner struct {
	mu    sync.Mutex
	cache map[uint64][][]model.ChromEntry
}

// NewPartitioner returns an empty Partitioner.
func NewPartitioner() *Partitioner {
	return &Partitioner{cache: make(map[uint64][][]model.ChromEntry)}
}

// Partition divides entries into nWorkers buckets using algo. Buckets are
// returned in no particular order; callers needing canonical chromosome
// order (the emitter) index chromosomes by their own ChromEntry.ID, not by
// bucket position.
func (p *Partitioner) Partition(entries []model.ChromEntry, nWorkers int, algo Algorithm) [][]model.ChromEntry {
	if nWorkers <= 0 {
		nWorkers = 1
	}
	if nWorkers > len(entries) && len(entries) > 0 {
		nWorkers = len(entries)
	}

	if algo == DifferencingSearchTree {
		sig := signature(entries)
		p.mu.Lock()
		if cached, ok := p.cache[sig]; ok && len(cached) == nWorkers {
			p.mu.Unlock()
			return cached
		}
		p.mu.Unlock()

		sorted := sortedDescending(entries)
		result := differencingSearchTree(sorted, nWorkers)
		p.mu.Lock()
		p.cache[sig] = result
		p.mu.Unlock()
		return result
	}

	sorted := sortedDescending(entries)
	switch algo {
	case RoundRobinGreedy:
		return roundRobinGreedy(sorted, nWorkers)
	case StuffingGreedy:
		return stuffingGreedy(sorted, nWorkers)
	default:
		return classicGreedy(sorted, nWorkers)
	}
}

func signature(entries []model.ChromEntry) uint64 {
	var sig uint64
	var buf [12]byte
	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(e.ID))
		binary.LittleEndian.PutUint64(buf[4:12], uint64(e.EffectiveLength))
		sig = farm.Hash64WithSeed(buf[:], sig)
	}
	return sig
}

func sortedDescending(entries []model.ChromEntry) []model.ChromEntry {
	sorted := make([]model.ChromEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveLength > sorted[j].EffectiveLength
	})
	return sorted
}

// roundRobinGreedy deposits entries in a serpentine (boustrophedon) sweep
// across the buckets: 0,1,...,n-1,n-1,n-2,...,0,0,1,... Reversing
// direction at each end, rather than wrapping back to bucket 0 like plain
// modulo round-robin, keeps a size-sorted run of entries from always
// handing its largest remainder to the same bucket.
func roundRobinGreedy(sorted []model.ChromEntry, n int) [][]model.ChromEntry {
	buckets := make([][]model.ChromEntry, n)
	i, shift := 0, 1
	for _, e := range sorted {
		buckets[i] = append(buckets[i], e)
		i += shift
		if i/n > 0 {
			i--
			shift = -1
		} else if i < 0 {
			i++
			shift = 1
		}
	}
	return buckets
}

func classicGreedy(sorted []model.ChromEntry, n int) [][]model.ChromEntry {
	buckets := make([][]model.ChromEntry, n)
	sums := make([]model.PosType, n)
	for _, e := range sorted {
		idx := lightest(sums)
		buckets[idx] = append(buckets[idx], e)
		sums[idx] += e.EffectiveLength
	}
	return buckets
}

func stuffingGreedy(sorted []model.ChromEntry, n int) [][]model.ChromEntry {
	buckets := make([][]model.ChromEntry, n)
	var total model.PosType
	for _, e := range sorted {
		total += e.EffectiveLength
	}
	target := total / model.PosType(n)
	if target == 0 {
		target = 1
	}
	bucket := 0
	var sum model.PosType
	for _, e := range sorted {
		buckets[bucket] = append(buckets[bucket], e)
		sum += e.EffectiveLength
		if sum >= target && bucket < n-1 {
			bucket++
			sum = 0
		}
	}
	return buckets
}

// maxSearchIterations bounds the differencing local search; the chromosome
// counts this package ever sees (a few dozen at most) converge in a
// handful of moves, so this is headroom, not a real limit in practice.
const maxSearchIterations = 64

func differencingSearchTree(sorted []model.ChromEntry, n int) [][]model.ChromEntry {
	best := classicGreedy(sorted, n)
	bestSpread := spread(best)
	for iter := 0; iter < maxSearchIterations; iter++ {
		sums := bucketSums(best)
		hi, lo := maxMinIndex(sums)
		if hi == lo || len(best[hi]) == 0 {
			break
		}
		candidate := cloneBuckets(best)
		moveIdx := len(candidate[hi]) - 1
		moved := candidate[hi][moveIdx]
		candidate[hi] = candidate[hi][:moveIdx]
		candidate[lo] = append(candidate[lo], moved)
		s := spread(candidate)
		if s >= bestSpread {
			break // no further improving move; keep the standby snapshot
		}
		best = candidate
		bestSpread = s
	}
	return best
}

func bucketSums(buckets [][]model.ChromEntry) []model.PosType {
	sums := make([]model.PosType, len(buckets))
	for i, b := range buckets {
		for _, e := range b {
			sums[i] += e.EffectiveLength
		}
	}
	return sums
}

func spread(buckets [][]model.ChromEntry) model.PosType {
	sums := bucketSums(buckets)
	hi, lo := maxMinIndex(sums)
	return sums[hi] - sums[lo]
}

func lightest(sums []model.PosType) int {
	idx := 0
	for i := 1; i < len(sums); i++ {
		if sums[i] < sums[idx] {
			idx = i
		}
	}
	return idx
}

func maxMinIndex(sums []model.PosType) (hi, lo int) {
	for i := 1; i < len(sums); i++ {
		if sums[i] > sums[hi] {
			hi = i
		}
		if sums[i] < sums[lo] {
			lo = i
		}
	}
	return hi, lo
}

func cloneBuckets(buckets [][]model.ChromEntry) [][]model.ChromEntry {
	out := make([][]model.ChromEntry, len(buckets))
	for i, b := range buckets {
		out[i] = append([]model.ChromEntry(nil), b...)
	}
	return out
}
