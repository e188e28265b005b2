package blockfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecordAndCloseFlushesToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	bf, err := New(context.Background(), path, Opts{})
	require.NoError(t, err)

	require.NoError(t, bf.WriteRecord([]byte("hello"), true))
	require.NoError(t, bf.WriteRecord([]byte("world"), true))
	require.NoError(t, bf.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(got))
}

func TestRecordCountTracksAcrossClones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	bf, err := New(context.Background(), path, Opts{})
	require.NoError(t, err)
	clone := bf.CloneForThread(0)

	require.NoError(t, bf.WriteRecord([]byte("a"), true))
	require.NoError(t, clone.WriteRecord([]byte("b"), true))

	assert.Equal(t, int64(2), bf.RecordCount())
	assert.Equal(t, int64(2), clone.RecordCount())

	require.NoError(t, clone.Flush())
	require.NoError(t, bf.Close())
}

func TestFlushOfEmptyBufferIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	bf, err := New(context.Background(), path, Opts{})
	require.NoError(t, err)
	require.NoError(t, bf.Flush())
	require.NoError(t, bf.Close())
}

func TestZippedRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt.gz")
	bf, err := New(context.Background(), path, Opts{Zipped: true})
	require.NoError(t, err)
	require.NoError(t, bf.WriteRecord([]byte("payload"), true))
	require.NoError(t, bf.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
