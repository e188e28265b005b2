package samio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/chipsim/blockfile"
	"github.com/grailbio/chipsim/model"
	"github.com/grailbio/chipsim/qualpattern"
)

func newBF(t *testing.T) (*blockfile.BlockFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.sam")
	bf, err := blockfile.New(context.Background(), path, blockfile.Opts{})
	require.NoError(t, err)
	return bf, path
}

func TestWriteHeaderEmitsHDSQAndPG(t *testing.T) {
	bf, path := newBF(t)
	chroms := []model.ChromEntry{
		{ID: 0, Name: "1", Length: 1000},
		{ID: 1, Name: "2", Length: 2000},
	}
	require.NoError(t, WriteHeader(bf, "chipsim", "1.0", "chipsim -output x", chroms))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "@HD\tVN:1.6\tSO:unsorted\n" +
		"@SQ\tSN:1\tLN:1000\n" +
		"@SQ\tSN:2\tLN:2000\n" +
		"@PG\tID:chipsim\tPN:chipsim\tVN:1.0\tCL:chipsim -output x\n"
	assert.Equal(t, want, string(got))
}

func TestWriteSingleForwardStrand(t *testing.T) {
	bf, path := newBF(t)
	w := New(bf, qualpattern.NewConstant('I'), 60)
	w.SetChrom("1")

	r := model.Read{Seq: []byte("ACGT"), Pos: 99, Len: 4, Reverse: false}
	require.NoError(t, w.WriteSingle([]byte("read1"), r))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "read1\t0\t1\t100\t60\t4M\t*\t0\t0\tACGT\tIIII\n"
	assert.Equal(t, want, string(got))
}

func TestWriteSingleReverseStrandSetsFlagAndRevcomps(t *testing.T) {
	bf, path := newBF(t)
	w := New(bf, qualpattern.NewConstant('I'), 0)
	w.SetChrom("1")

	r := model.Read{Seq: []byte("ACGT"), Pos: 0, Len: 4, Reverse: true}
	require.NoError(t, w.WriteSingle([]byte("read1"), r))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "read1\t16\t1\t1\t0\t4M\t*\t0\t0\tACGT\tIIII\n"
	assert.Equal(t, want, string(got))
}

func TestWritePairComputesReciprocalFieldsAndFlags(t *testing.T) {
	bf, path := newBF(t)
	w := New(bf, qualpattern.NewConstant('I'), 30)
	w.SetChrom("1")

	frag := model.Fragment{Start: 0, End: 104}
	r1 := model.Read{Seq: []byte("AAAA"), Pos: 0, Len: 4, Reverse: false}
	r2 := model.Read{Seq: []byte("TTTT"), Pos: 100, Len: 4, Reverse: true}
	require.NoError(t, w.WritePair(frag, []byte("pair1"), r1, r2))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "pair1/1\t99\t1\t1\t30\t4M\t=\t101\t104\tAAAA\tIIII\n" +
		"pair1/2\t147\t1\t101\t30\t4M\t=\t1\t-104\tAAAA\tIIII\n"
	assert.Equal(t, want, string(got))
}
