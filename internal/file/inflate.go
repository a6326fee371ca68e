package file

import (
	"bufio"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// InflatePool manages reusable deflate readers to reduce allocation
// overhead when many entries are read in a row.
type InflatePool struct {
	pool sync.Pool
}

// NewInflatePool creates an empty pool.
func NewInflatePool() *InflatePool {
	return &InflatePool{}
}

// Get returns a deflate reader positioned at the start of r.
// The caller must call the returned release function when done; release
// closes the reader and returns it to the pool.
//
// A nil pool is valid and hands out one-off readers.
func (p *InflatePool) Get(r io.Reader) (io.ReadCloser, func()) {
	br := asByteReader(r)
	if p == nil {
		fr := flate.NewReader(br)
		return fr, func() { _ = fr.Close() }
	}

	if v, ok := p.pool.Get().(io.ReadCloser); ok {
		if rs, ok := v.(flate.Resetter); ok && rs.Reset(br, nil) == nil {
			return v, p.releaseFunc(v)
		}
	}
	fr := flate.NewReader(br)
	return fr, p.releaseFunc(fr)
}

func (p *InflatePool) releaseFunc(fr io.ReadCloser) func() {
	return func() {
		_ = fr.Close()
		p.pool.Put(fr)
	}
}

// asByteReader keeps the inflater from wrapping r in its own bufio.Reader,
// so that every entry read uses a fresh buffer bound to the current seek
// position.
func asByteReader(r io.Reader) io.Reader {
	if _, ok := r.(io.ByteReader); ok {
		return r
	}
	return bufio.NewReader(r)
}
