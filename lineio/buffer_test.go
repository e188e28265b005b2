package lineio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/chipsim/blockfile"
)

func newSink(t *testing.T) (*blockfile.BlockFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	bf, err := blockfile.New(context.Background(), path, blockfile.Opts{})
	require.NoError(t, err)
	return bf, path
}

func TestForwardCompositionTabDelimited(t *testing.T) {
	bf, path := newSink(t)
	buf := New(64, '\t', bf)

	buf.SetOffset(0)
	buf.AddStr("chr1", true)
	buf.AddInt(10, true)
	buf.AddInt(20, false)
	require.NoError(t, buf.CommitForward(0, true))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chr1\t10\t20\n", string(got))
}

func TestBackwardCompositionBuildsReverseOrder(t *testing.T) {
	bf, path := newSink(t)
	buf := New(64, '\t', bf)

	buf.SetOffset(len(buf.Bytes()))
	buf.AddStrBack("QUAL")
	buf.AddStrBack("SEQ")
	buf.AddIntBack(42)
	buf.AddCharsBackHead([]byte("QNAME"))
	require.NoError(t, buf.CommitBackward())
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "QNAME\t42\tSEQ\tQUAL", string(got))
}

func TestAddIntsWithTrailingDelimOption(t *testing.T) {
	bf, path := newSink(t)
	buf := New(64, ',', bf)

	buf.SetOffset(0)
	buf.AddInts(false, 1, 2, 3)
	require.NoError(t, buf.CommitForward(0, true))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,2,3\n", string(got))
}

func TestRefillResetsDelimiter(t *testing.T) {
	bf, _ := newSink(t)
	buf := New(8, '\t', bf)
	buf.SetOffset(0)
	buf.AddStr("ab", false)
	buf.Refill()
	for _, b := range buf.Bytes() {
		assert.Equal(t, byte('\t'), b)
	}
	require.NoError(t, bf.Close())
}
