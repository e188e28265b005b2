package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/chipsim/model"
)

func entries() []model.ChromEntry {
	return []model.ChromEntry{
		{ID: 0, Name: "1", Length: 100, EffectiveLength: 100},
		{ID: 1, Name: "2", Length: 90, EffectiveLength: 90},
		{ID: 2, Name: "3", Length: 50, EffectiveLength: 50},
		{ID: 3, Name: "4", Length: 10, EffectiveLength: 10},
	}
}

func totalLen(buckets [][]model.ChromEntry) int {
	n := 0
	for _, b := range buckets {
		n += len(b)
	}
	return n
}

func TestRoundRobinGreedyDistributesAll(t *testing.T) {
	p := NewPartitioner()
	buckets := p.Partition(entries(), 2, RoundRobinGreedy)
	assert.Len(t, buckets, 2)
	assert.Equal(t, 4, totalLen(buckets))
}

func TestRoundRobinGreedySerpentinesAcrossBuckets(t *testing.T) {
	serpentine := []model.ChromEntry{
		{ID: 0, Name: "1", EffectiveLength: 100},
		{ID: 1, Name: "2", EffectiveLength: 99},
		{ID: 2, Name: "3", EffectiveLength: 97},
		{ID: 3, Name: "4", EffectiveLength: 3},
		{ID: 4, Name: "5", EffectiveLength: 2},
		{ID: 5, Name: "6", EffectiveLength: 1},
	}
	p := NewPartitioner()
	buckets := p.Partition(serpentine, 2, RoundRobinGreedy)
	assert.Len(t, buckets, 2)
	sums := bucketSums(buckets)
	// Forward 100->bucket0, 99->bucket1; flip at the boundary so
	// 97->bucket1, 3->bucket0; flip again so 2->bucket0, 1->bucket1.
	assert.Equal(t, model.PosType(105), sums[0]) // 100 + 3 + 2
	assert.Equal(t, model.PosType(197), sums[1]) // 99 + 97 + 1
}

func TestClassicGreedyBalancesSums(t *testing.T) {
	p := NewPartitioner()
	buckets := p.Partition(entries(), 2, ClassicGreedy)
	assert.Len(t, buckets, 2)
	sums := bucketSums(buckets)
	// 100+10 vs 90+50: 110 and 140, the smallest spread this set allows.
	assert.Equal(t, model.PosType(110), sums[0])
	assert.Equal(t, model.PosType(140), sums[1])
}

func TestStuffingGreedyFillsSequentially(t *testing.T) {
	p := NewPartitioner()
	buckets := p.Partition(entries(), 2, StuffingGreedy)
	assert.Len(t, buckets, 2)
	assert.Equal(t, 4, totalLen(buckets))
}

func TestDifferencingSearchTreeNeverWorseThanClassicGreedy(t *testing.T) {
	p := NewPartitioner()
	dst := p.Partition(entries(), 2, DifferencingSearchTree)
	classic := classicGreedy(sortedDescending(entries()), 2)
	assert.LessOrEqual(t, int(spread(dst)), int(spread(classic)))
}

func TestDifferencingSearchTreeIsCachedBySignature(t *testing.T) {
	p := NewPartitioner()
	first := p.Partition(entries(), 2, DifferencingSearchTree)
	second := p.Partition(entries(), 2, DifferencingSearchTree)
	assert.Equal(t, first, second)
	sig := signature(entries())
	assert.Contains(t, p.cache, sig)
}

func TestPartitionClampsWorkerCountToEntryCount(t *testing.T) {
	p := NewPartitioner()
	buckets := p.Partition(entries(), 100, ClassicGreedy)
	assert.Len(t, buckets, len(entries()))
}

func TestValidateEntriesRejectsNegativeEffectiveLength(t *testing.T) {
	bad := []model.ChromEntry{{ID: 0, Name: "1", EffectiveLength: -1}}
	assert.Error(t, ValidateEntries(bad))
}

func TestValidateEntriesRejectsDuplicateID(t *testing.T) {
	bad := []model.ChromEntry{
		{ID: 0, Name: "1", EffectiveLength: 10},
		{ID: 0, Name: "2", EffectiveLength: 10},
	}
	assert.Error(t, ValidateEntries(bad))
}

func TestValidateEntriesAcceptsWellFormedTable(t *testing.T) {
	assert.NoError(t, ValidateEntries(entries()))
}

func TestPartitionEmptyEntries(t *testing.T) {
	p := NewPartitioner()
	buckets := p.Partition(nil, 4, ClassicGreedy)
	assert.Len(t, buckets, 4)
	assert.Equal(t, 0, totalLen(buckets))
}
