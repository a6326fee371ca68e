// Package records stores per-group transform metadata for portrait images.
//
// The current format (Images.dbz) is a raw deflate stream of UTF-8 lines,
// one record per line:
//
//	"<Base>" <Width> <ShiftX> <ShiftY> <Rotation> <ScaleX> <ScaleY>
//
// Files are always rewritten whole. Any line that does not conform fails
// the whole load.
//
// The legacy format (Images.dbx) is read once to migrate old data. Its
// reader is tolerant: malformed lines are logged and skipped, and a
// versioned Corrections table repairs known historical name defects.
package records

import "github.com/meigma/portrait/internal/imgtype"

const (
	// CurrentFile is the name of the current record file in an image root.
	CurrentFile = "Images.dbz"

	// LegacyFile is the name of the legacy record file in an image root.
	LegacyFile = "Images.dbx"
)

// Sentinel errors re-exported from internal/imgtype.
var (
	// ErrInvalidFormat is returned when a current-format line does not
	// conform or the compressed stream is corrupt.
	ErrInvalidFormat = imgtype.ErrInvalidFormat

	// ErrNotFound is returned by LoadCurrent when the record file is absent.
	ErrNotFound = imgtype.ErrNotFound
)

// Record holds the display transform of one image group.
type Record struct {
	// Base is the group key, for example "Actor12b".
	Base string

	// Width is the display width in pixels.
	Width int

	// ShiftX and ShiftY are pixel offsets.
	ShiftX int
	ShiftY int

	// Rotation is stored and round-tripped but carries no meaning yet.
	Rotation float64

	// ScaleX and ScaleY are scale factors. A negative ScaleX with a
	// positive ScaleY marks a horizontally flipped image.
	ScaleX float64
	ScaleY float64
}

// IsFlipped reports whether the record encodes a horizontal flip.
func (r Record) IsFlipped() bool {
	return r.ScaleY > 0 && r.ScaleX < 0
}

// Flip toggles the horizontal flip by negating ScaleX.
func (r *Record) Flip() {
	r.ScaleX = -r.ScaleX
}
