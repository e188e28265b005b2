package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/model"
)

func newBF(t *testing.T) (*blockfile.BlockFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	bf, err := blockfile.New(context.Background(), path, blockfile.Opts{})
	require.NoError(t, err)
	return bf, path
}

func TestBedgraphEmitsInCanonicalOrderRegardlessOfFinishOrder(t *testing.T) {
	bf, path := newBF(t)
	e := New("bedgraph", bf, nil, 2)

	chrom1 := NewBedgraphChrom(model.ChromEntry{ID: 1, Name: "2", Length: 100})
	chrom1.Cov.AddInterval(10, 20)

	chrom0 := NewBedgraphChrom(model.ChromEntry{ID: 0, Name: "1", Length: 50})
	chrom0.Cov.AddInterval(0, 30)

	// Submit out of canonical order: index 1 before index 0.
	require.NoError(t, e.Finish(1, chrom1))
	require.NoError(t, e.Finish(0, chrom0))
	require.NoError(t, e.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "1\t0\t30\t1\n" + "2\t10\t20\t1\n"
	assert.Equal(t, want, string(got))
}

func TestDensityEmitsHeaderAndOneBasedPositions(t *testing.T) {
	bf, path := newBF(t)
	e := New("fragment density", bf, nil, 1)

	chrom := NewDensityChrom(model.ChromEntry{ID: 0, Name: "1", Length: 100})
	chrom.Dens.AddPoint(49)
	chrom.Dens.AddPoint(49)

	require.NoError(t, e.Finish(0, chrom))
	require.NoError(t, e.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "variableStep\tchrom=1\n50\t2\n"
	assert.Equal(t, want, string(got))
}
