// Package imgtype holds the types and sentinel errors shared by the archive,
// record store, locator and resolver packages.
package imgtype

import "errors"

var (
	// ErrInvalidFormat is returned when an archive marker, table record or
	// record line does not match the expected layout.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrNotFound is returned when an archive, entry or record file is absent.
	ErrNotFound = errors.New("not found")

	// ErrNameFormat is returned when an image name does not follow the
	// Actor/Body/Face naming grammar.
	ErrNameFormat = errors.New("invalid image name format")

	// ErrAlreadyExists is returned when an archive or extraction target
	// already exists. Existing targets are never overwritten or merged.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedType is returned for a source whose extension is neither
	// the image nor the archive extension.
	ErrUnsupportedType = errors.New("unsupported image file type")

	// ErrSizeOverflow is returned when an offset or length does not fit the
	// int32 fields of the archive format.
	ErrSizeOverflow = errors.New("size overflow")

	// ErrUnavailable is returned when the volume holding an image root is
	// not mounted or not readable.
	ErrUnavailable = errors.New("image root unavailable")
)
