package portrait

import (
	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/internal/imgtype"
)

// Errors re-exported from internal/imgtype.
var (
	// ErrInvalidFormat is returned for a corrupt archive or record file.
	ErrInvalidFormat = imgtype.ErrInvalidFormat

	// ErrNotFound is returned when an archive, entry or record file is absent.
	ErrNotFound = imgtype.ErrNotFound

	// ErrNameFormat is returned for a name outside the naming grammar.
	ErrNameFormat = imgtype.ErrNameFormat

	// ErrAlreadyExists is returned when an archive or extraction directory
	// already exists.
	ErrAlreadyExists = imgtype.ErrAlreadyExists

	// ErrUnsupportedType is returned when loading a path that is neither an
	// image nor an archive.
	ErrUnsupportedType = imgtype.ErrUnsupportedType

	// ErrSizeOverflow is returned when a file exceeds the archive limits.
	ErrSizeOverflow = imgtype.ErrSizeOverflow

	// ErrUnavailable is returned when the image root volume is unreachable.
	ErrUnavailable = imgtype.ErrUnavailable
)

// Errors re-exported from archive.
var (
	// ErrNoFiles is returned when packing a group with no loose files.
	ErrNoFiles = archive.ErrNoFiles

	// ErrDuplicateEntry is returned when two files map to one entry name.
	ErrDuplicateEntry = archive.ErrDuplicateEntry

	// ErrTooManyEntries is returned when an archive exceeds the entry limit.
	ErrTooManyEntries = archive.ErrTooManyEntries
)
