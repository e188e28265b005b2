package fastqio

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

func newBF(t *testing.T, name string) (*blockfile.BlockFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	bf, err := blockfile.New(context.Background(), path, blockfile.Opts{})
	require.NoError(t, err)
	return bf, path
}

func TestWriteSingleForwardRead(t *testing.T) {
	bf, path := newBF(t, "r1.fastq")
	w := NewSingleEnd(bf, qualpattern.NewConstant('I'))

	r := model.Read{Seq: []byte("ACGT"), Pos: 0, Len: 4, Reverse: false}
	require.NoError(t, w.WriteSingle([]byte("read1"), r))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@read1\nACGT\n+\nIIII\n", string(got))
}

func TestWriteSingleReverseRevcomps(t *testing.T) {
	bf, path := newBF(t, "r1.fastq")
	w := NewSingleEnd(bf, qualpattern.NewConstant('I'))

	r := model.Read{Seq: []byte("ACGT"), Pos: 0, Len: 4, Reverse: true}
	require.NoError(t, w.WriteSingle([]byte("read1"), r))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@read1\nACGT\n+\nIIII\n", string(got))
}

func TestWritePairAppendsMateSuffixAndUsesBothFiles(t *testing.T) {
	bf1, path1 := newBF(t, "r1.fastq")
	bf2, path2 := newBF(t, "r2.fastq")
	w := NewPairedEnd(bf1, bf2, qualpattern.NewConstant('#'))

	r1 := model.Read{Seq: []byte("AAAA"), Pos: 0, Len: 4}
	r2 := model.Read{Seq: []byte("TTTT"), Pos: 100, Len: 4, Reverse: true}
	require.NoError(t, w.WritePair([]byte("pair1"), r1, r2))
	require.NoError(t, bf1.Close())
	require.NoError(t, bf2.Close())

	got1, err := os.ReadFile(path1)
	require.NoError(t, err)
	assert.Equal(t, "@pair1/1\nAAAA\n+\n####\n", string(got1))

	got2, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, "@pair1/2\nAAAA\n+\n####\n", string(got2))
}
