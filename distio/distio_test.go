package distio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClampsOutOfRangeLengths(t *testing.T) {
	h := NewHistogram("read length", 10)
	h.Record(-5)
	h.Record(3)
	h.Record(3)
	h.Record(1000)

	assert.Equal(t, int64(2), h.buckets[0])
	assert.Equal(t, int64(2), h.buckets[3])
	assert.Equal(t, int64(1), h.buckets[10])
}

func TestWriteEmitsSortedNonzeroBuckets(t *testing.T) {
	h := NewHistogram("fragment length", 300)
	h.Record(150)
	h.Record(150)
	h.Record(200)

	path := filepath.Join(t.TempDir(), "dist.txt")
	var warned []string
	warn := func(format string, args ...interface{}) { warned = append(warned, format) }

	require.NoError(t, Write(context.Background(), path, h, warn))
	assert.Empty(t, warned)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "150\t2\n200\t1\n", string(got))
}

func TestWriteEmptyHistogramProducesEmptyFile(t *testing.T) {
	h := NewHistogram("read length", 50)
	path := filepath.Join(t.TempDir(), "dist.txt")
	require.NoError(t, Write(context.Background(), path, h, func(string, ...interface{}) {}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteOpenFailureReturnsError(t *testing.T) {
	h := NewHistogram("read length", 10)
	// A path inside a nonexistent directory can't be created.
	path := filepath.Join(t.TempDir(), "no-such-dir", "dist.txt")
	err := Write(context.Background(), path, h, func(string, ...interface{}) {})
	require.Error(t, err)
}

func TestAppendInt(t *testing.T) {
	assert.Equal(t, "0", string(appendInt(nil, 0)))
	assert.Equal(t, "42", string(appendInt(nil, 42)))
	assert.Equal(t, "-7", string(appendInt(nil, -7)))
}
