package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/portrait/internal/file"
	"github.com/meigma/portrait/internal/sizing"
)

// Reader is a cursor over the entries of one archive.
//
// Open decodes the whole file table; the cursor then walks the entries in
// table order. Bodies are read on demand: ReadBody and CopyBody seek the
// underlying stream to the current entry and inflate it in a fresh
// decompression scope. A Reader owns its stream and is not safe for
// concurrent use; separate Readers over the same path are independent.
type Reader struct {
	src         io.ReadSeeker
	closer      io.Closer
	name        string
	size        int64
	tableOffset int64
	entries     []Entry
	pos         int
	err         error
	pool        *file.InflatePool
	maxEntries  int
	logger      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger for reader diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithMaxEntries sets the maximum number of table entries accepted.
// Zero uses DefaultMaxEntries. Negative means no limit.
func WithMaxEntries(n int) Option {
	return func(r *Reader) {
		r.maxEntries = n
	}
}

// WithInflatePool shares a deflate reader pool between Readers.
func WithInflatePool(pool *file.InflatePool) Option {
	return func(r *Reader) {
		r.pool = pool
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Open opens the archive at path and decodes its file table.
// The caller must Close the returned Reader.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided archive path is intentional
	if err != nil {
		return nil, err
	}
	r, err := newReader(f, path, opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader decodes the file table of an archive held in src.
// Closing the returned Reader closes src if it implements io.Closer.
func NewReader(src io.ReadSeeker, opts ...Option) (*Reader, error) {
	r, err := newReader(src, "", opts...)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

func newReader(src io.ReadSeeker, name string, opts ...Option) (*Reader, error) {
	r := &Reader{src: src, name: name, pos: -1}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = file.NewInflatePool()
	}
	maxEntries := r.maxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	r.size = size
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(src, hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrInvalidFormat)
		}
		return nil, err
	}
	tableOffset, err := decodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	if tableOffset <= HeaderSize || tableOffset >= size {
		return nil, fmt.Errorf("%w: table offset %d outside file of %d bytes", ErrInvalidFormat, tableOffset, size)
	}
	r.tableOffset = tableOffset

	if _, err := src.Seek(tableOffset, io.SeekStart); err != nil {
		return nil, err
	}
	fr, release := r.pool.Get(src)
	entries, err := decodeTable(fr, tableLimits{tableOffset: tableOffset, maxEntries: maxEntries})
	release()
	if err != nil {
		return nil, err
	}
	r.entries = entries

	r.log().Debug("archive table loaded", "archive", name, "entries", len(entries), "table_offset", tableOffset)
	return r, nil
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Len returns the number of entries in the archive.
func (r *Reader) Len() int {
	return len(r.entries)
}

// TableOffset returns the offset of the file table recorded in the header.
func (r *Reader) TableOffset() int64 {
	return r.tableOffset
}

// Entries returns a copy of the decoded file table in stored order.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns the entry names in stored order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Next advances the cursor to the next entry.
// It returns false when the entries are exhausted or a body read failed.
func (r *Reader) Next() bool {
	if r.err != nil || r.pos >= len(r.entries) {
		return false
	}
	r.pos++
	return r.pos < len(r.entries)
}

// Entry returns the entry under the cursor.
// It must only be called after Next returned true.
func (r *Reader) Entry() Entry {
	return r.entries[r.pos]
}

// Err returns the first body read error encountered while iterating.
func (r *Reader) Err() error {
	return r.err
}

// Reset moves the cursor back before the first entry and clears Err.
func (r *Reader) Reset() {
	r.pos = -1
	r.err = nil
}

// ReadBody inflates the current entry into dst and returns the filled
// slice. When dst is too small a new slice is grown as the body inflates,
// so a recorded size is never allocated ahead of the data. Reusing the
// returned slice across entries keeps a walk over the archive to one
// scratch buffer.
func (r *Reader) ReadBody(dst []byte) ([]byte, error) {
	e, err := r.current()
	if err != nil {
		return dst[:0], err
	}

	err = r.withBody(e, func(body io.Reader) error {
		if int64(cap(dst)) >= e.Size {
			dst = dst[:e.Size]
			if _, err := io.ReadFull(body, dst); err != nil {
				return bodyErr(e, err)
			}
			return nil
		}
		data, err := sizing.ReadAllWithLimit(body, e.Size, errExtraData)
		if err != nil {
			return bodyErr(e, err)
		}
		if int64(len(data)) < e.Size {
			return bodyErr(e, io.ErrUnexpectedEOF)
		}
		dst = data
		return nil
	})
	if err != nil {
		return dst[:0], err
	}
	return dst, nil
}

// CopyBody inflates the current entry into w.
func (r *Reader) CopyBody(w io.Writer) (int64, error) {
	e, err := r.current()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.withBody(e, func(body io.Reader) error {
		var copyErr error
		n, copyErr = io.CopyN(w, body, e.Size)
		if copyErr != nil {
			return bodyErr(e, copyErr)
		}
		return nil
	})
	return n, err
}

func (r *Reader) current() (Entry, error) {
	if r.err != nil {
		return Entry{}, r.err
	}
	if r.pos < 0 || r.pos >= len(r.entries) {
		return Entry{}, errors.New("archive: no current entry")
	}
	return r.entries[r.pos], nil
}

// withBody seeks to e, opens a decompression scope and hands it to fn.
// The inflater is released on every path; a failure sticks to the Reader.
func (r *Reader) withBody(e Entry, fn func(io.Reader) error) error {
	if _, err := r.src.Seek(e.Offset, io.SeekStart); err != nil {
		r.err = err
		return err
	}
	fr, release := r.pool.Get(r.src)
	defer release()

	if err := fn(fr); err != nil {
		r.err = err
		return err
	}
	if err := ensureEnd(fr); err != nil {
		r.err = bodyErr(e, err)
		return r.err
	}
	return nil
}

var errExtraData = errors.New("extra data")

// ensureEnd checks that the deflate stream ends where the recorded size
// says it does.
func ensureEnd(fr io.Reader) error {
	var b [1]byte
	n, err := fr.Read(b[:])
	for n == 0 && err == nil {
		n, err = fr.Read(b[:])
	}
	if n == 0 && errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return errExtraData
	}
	return err
}

func bodyErr(e Entry, err error) error {
	if errors.Is(err, errExtraData) {
		return fmt.Errorf("%w: entry %q longer than recorded %d bytes", ErrInvalidFormat, e.Name, e.Size)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: entry %q shorter than recorded %d bytes", ErrInvalidFormat, e.Name, e.Size)
	}
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		return fmt.Errorf("%w: entry %q: %v", ErrInvalidFormat, e.Name, err)
	}
	return fmt.Errorf("entry %q: %w", e.Name, err)
}
