package archive

import (
	"errors"

	"github.com/meigma/portrait/internal/imgtype"
)

// Sentinel errors re-exported from internal/imgtype.
var (
	// ErrInvalidFormat is returned for a bad marker, a malformed table or a
	// body that does not inflate to its recorded length.
	ErrInvalidFormat = imgtype.ErrInvalidFormat

	// ErrNotFound is returned when a named entry is not in the archive.
	ErrNotFound = imgtype.ErrNotFound

	// ErrAlreadyExists is returned when the archive or extraction directory
	// already exists.
	ErrAlreadyExists = imgtype.ErrAlreadyExists

	// ErrSizeOverflow is returned when an offset or length exceeds int32.
	ErrSizeOverflow = imgtype.ErrSizeOverflow
)

// Sentinel errors specific to the archive package.
var (
	// ErrNoFiles is returned when a selector matches no files.
	ErrNoFiles = errors.New("archive: no files selected")

	// ErrDuplicateEntry is returned when two source files map to the same
	// entry name.
	ErrDuplicateEntry = errors.New("archive: duplicate entry name")

	// ErrTooManyEntries is returned when an archive holds more entries than
	// the configured limit.
	ErrTooManyEntries = errors.New("archive: too many entries")
)
