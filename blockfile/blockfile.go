// Package blockfile implements C1: a buffered, optionally gzip-compressed
// append-only writer that one OS stream may be shared by several
// thread-local clones (spec.md §4.1).
//
// A primer BlockFile owns the underlying github.com/grailbio/base/file.File
// and, if zipped, the compressor wrapping it; clones created with
// CloneForThread share that stream but keep an independent write buffer so
// concurrent worker goroutines almost never contend on the same cache
// lines. Every clone's Flush acquires the caller-supplied family mutex
// before touching the shared stream, matching this repository's sharded
// writer pattern (encoding/bam/shardedbam.go).
package blockfile

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"v.io/x/lib/vlog"

	"github.com/grailbio/chipsim/model"
)

// DefaultBaseBlock is the unit block size buffers are sized in multiples
// of (spec.md §4.1).
const DefaultBaseBlock = 2 << 20 // 2 MiB

// DefaultBufferBlocks is the default initial buffer size, expressed as a
// multiple of DefaultBaseBlock.
const DefaultBufferBlocks = 32

// cloneStagger is the per-thread-index buffer size increment a clone adds
// to DefaultBaseBlock, staggering flush arrivals across threads.
const cloneStagger = 256 * 1024

// shared is the state one primer BlockFile and all of its clones hold a
// pointer to: the underlying stream, the optional compressor wrapping it,
// the family mutex, and the latched error.
type shared struct {
	ctx      context.Context
	path     string
	f        file.File
	compr    compressor // nil unless zipped
	mu       *sync.Mutex
	err      errors.Once
	records  int64 // atomic
	zipped   bool
	abortive bool
}

func (s *shared) writeRaw(p []byte) error {
	if s.mu != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	var err error
	if s.zipped {
		_, err = s.compr.Write(p)
	} else {
		_, err = s.f.Writer(s.ctx).Write(p)
	}
	if err != nil {
		werr := model.WithKind(model.KindWriteFailure, errors.E(err, "blockfile: write", s.path))
		s.err.Set(werr)
		if s.abortive {
			vlog.Fatalf("blockfile: unrecoverable write failure on %s: %v", s.path, werr)
		}
		return werr
	}
	return nil
}

// BlockFile is a buffered writer over a shared stream. The zero value is
// not usable; construct with New or CloneForThread.
type BlockFile struct {
	sh     *shared
	primer bool
	buf    []byte
	cursor int
}

// Opts configures New.
type Opts struct {
	// Zipped gzip-compresses the stream.
	Zipped bool
	// Backend selects the gzip implementation when Zipped is set.
	Backend Backend
	// Mutex is the family mutex (see mutexset) clones of this BlockFile
	// will acquire around flushes. Pass nil for single-threaded use,
	// where flush acquires nothing (spec.md §4.14: "no-ops when the
	// program runs single-threaded").
	Mutex *sync.Mutex
	// HintUncompressedLen, if > 0 and smaller than the default initial
	// buffer size, shrinks the initial buffer to this size.
	HintUncompressedLen int
	// AbortOnInvalid, if true, makes a write failure fatal (vlog.Fatalf)
	// instead of merely latching it for later inspection via Err().
	AbortOnInvalid bool
}

// New opens or creates the file at path and returns the primer BlockFile.
// On gzip setup failure it returns a KindGzipOpenFailure/KindGzipUnavailable
// error; on open failure, KindOpenFailure.
func New(ctx context.Context, path string, opts Opts) (*BlockFile, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, model.WithKind(model.KindOpenFailure, errors.E(err, "blockfile: create", path))
	}
	sh := &shared{
		ctx:      ctx,
		path:     path,
		f:        f,
		mu:       opts.Mutex,
		zipped:   opts.Zipped,
		abortive: opts.AbortOnInvalid,
	}
	if opts.Zipped {
		compr, err := newCompressor(opts.Backend, f.Writer(ctx))
		if err != nil {
			_ = f.Close(ctx)
			return nil, err
		}
		sh.compr = compr
	}
	bf := &BlockFile{
		sh:     sh,
		primer: true,
		buf:    make([]byte, 0, initialBufferSize(opts)),
	}
	log.Debug.Printf("blockfile: opened %s (zipped=%v)", path, opts.Zipped)
	return bf, nil
}

func initialBufferSize(opts Opts) int {
	size := DefaultBufferBlocks * DefaultBaseBlock
	if opts.HintUncompressedLen > 0 && opts.HintUncompressedLen < size {
		size = opts.HintUncompressedLen
	}
	if opts.Zipped {
		size /= 2
	}
	return size
}

// CloneForThread returns a new BlockFile sharing this one's stream but
// with its own write buffer, sized base_block + cloneStagger*threadIndex
// so that concurrently-running clones rarely flush at the same instant.
// The clone is not a primer: it never closes the shared stream.
func (bf *BlockFile) CloneForThread(threadIndex int) *BlockFile {
	size := DefaultBaseBlock + cloneStagger*threadIndex
	return &BlockFile{
		sh:  bf.sh,
		buf: make([]byte, 0, size),
	}
}

// WriteRecord appends bytes (and, if closeLine, a trailing '\n') to the
// buffer, flushing first if there isn't room. It increments the shared
// record count on success.
func (bf *BlockFile) WriteRecord(rec []byte, closeLine bool) error {
	need := len(rec)
	if closeLine {
		need++
	}
	if bf.cursor+need > cap(bf.buf) {
		if err := bf.Flush(); err != nil {
			return err
		}
	}
	if need > cap(bf.buf) {
		// A single record larger than the whole buffer: grow rather than
		// loop forever flushing zero bytes.
		grown := make([]byte, 0, need)
		bf.buf = grown
	}
	bf.buf = bf.buf[:bf.cursor+need]
	n := copy(bf.buf[bf.cursor:], rec)
	if closeLine {
		bf.buf[bf.cursor+n] = '\n'
	}
	bf.cursor += need
	atomic.AddInt64(&bf.sh.records, 1)
	return nil
}

// Flush writes the current buffer to the underlying stream and resets the
// cursor. Flushing an empty buffer is a no-op (spec.md §8 idempotence
// property); the family mutex, if any, is held only around the actual
// write.
func (bf *BlockFile) Flush() error {
	if bf.cursor == 0 {
		return bf.sh.err.Err()
	}
	err := bf.sh.writeRaw(bf.buf[:bf.cursor])
	bf.cursor = 0
	bf.buf = bf.buf[:0]
	return err
}

// RecordCount returns the number of records written across every clone of
// this BlockFile's shared stream so far.
func (bf *BlockFile) RecordCount() int64 {
	return atomic.LoadInt64(&bf.sh.records)
}

// Err returns the latched error, if any write has failed.
func (bf *BlockFile) Err() error {
	return bf.sh.err.Err()
}

// Close flushes any buffered bytes and, if this BlockFile is the primer,
// closes the compressor (if any) and the underlying stream. Clones must
// still have their own Flush called (typically via the worker's own
// shutdown path) before the primer is closed.
func (bf *BlockFile) Close() error {
	if err := bf.Flush(); err != nil && bf.primer {
		// Still attempt to close what we can; report the flush error only
		// if closing doesn't produce its own.
		closeErr := bf.closeStream()
		if closeErr != nil {
			return closeErr
		}
		return err
	}
	if !bf.primer {
		return nil
	}
	return bf.closeStream()
}

func (bf *BlockFile) closeStream() error {
	var err error
	if bf.sh.zipped && bf.sh.compr != nil {
		if cerr := bf.sh.compr.Close(); cerr != nil {
			err = model.WithKind(model.KindCloseFailure, errors.E(cerr, "blockfile: compressor close", bf.sh.path))
		}
	}
	if cerr := bf.sh.f.Close(bf.sh.ctx); cerr != nil && err == nil {
		err = model.WithKind(model.KindCloseFailure, errors.E(cerr, "blockfile: close", bf.sh.path))
	}
	if err != nil {
		bf.sh.err.Set(err)
	}
	return err
}
