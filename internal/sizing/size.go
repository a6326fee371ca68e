// Package sizing provides checked conversions between Go sizes and the
// int32 fields of the archive format.
package sizing

import (
	"io"
	"math"
)

// ToInt32 converts a non-negative int64 to int32, returning overflowErr if it
// does not fit.
func ToInt32(size int64, overflowErr error) (int32, error) {
	if size < 0 || size > math.MaxInt32 {
		return 0, overflowErr
	}
	return int32(size), nil
}

// CountToInt32 converts a uint64 counter to int32, returning overflowErr if it
// does not fit.
func CountToInt32(size uint64, overflowErr error) (int32, error) {
	if size > math.MaxInt32 {
		return 0, overflowErr
	}
	return int32(size), nil //nolint:gosec // checked above
}

// ReadAllWithLimit reads up to maxSize bytes from r.
// Returns overflowErr if more than maxSize bytes are available.
func ReadAllWithLimit(r io.Reader, maxSize int64, overflowErr error) ([]byte, error) {
	if maxSize < 0 || maxSize > math.MaxInt-1 {
		return nil, overflowErr
	}
	lr := &io.LimitedReader{R: r, N: maxSize + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, overflowErr
	}
	return data, nil
}
