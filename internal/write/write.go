// Package write implements the per-entry compression step used while
// building an archive.
package write

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/portrait/internal/file"
	"github.com/meigma/portrait/internal/imgtype"
)

// Entry streams src through an independent deflate stream appended to w.
// It returns the number of uncompressed bytes read from src.
//
// The encoder and buf are reused across calls. Each call resets enc onto w
// and closes it afterwards, so every entry is a complete deflate stream
// that can be decoded on its own after a seek.
func Entry(w io.Writer, src io.Reader, enc *flate.Writer, buf []byte, expectedSize int64) (uint64, error) {
	if expectedSize < 0 {
		return 0, errors.New("negative file size")
	}

	cr := &file.CountingReader{R: io.LimitReader(src, expectedSize)}
	enc.Reset(w)
	if _, err := io.CopyBuffer(enc, cr, buf); err != nil {
		_ = enc.Close()
		return 0, wrapOverflowErr(err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("close deflate stream: %w", err)
	}

	if cr.N != uint64(expectedSize) {
		return 0, fmt.Errorf("file size changed during archive creation: expected %d, got %d", expectedSize, cr.N)
	}
	return cr.N, nil
}

// Block compresses an in-memory block as one deflate stream appended to w.
func Block(w io.Writer, data []byte, enc *flate.Writer) error {
	enc.Reset(w)
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return wrapOverflowErr(err)
	}
	return enc.Close()
}

func wrapOverflowErr(err error) error {
	if errors.Is(err, file.ErrOverflow) {
		return imgtype.ErrSizeOverflow
	}
	return err
}
