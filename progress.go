package portrait

import "github.com/meigma/portrait/internal/imgtype"

// Re-export progress types from internal/imgtype for the public API.
type (
	// ProgressEvent represents a progress update during Pack or Unpack.
	ProgressEvent = imgtype.ProgressEvent

	// ProgressFunc receives progress updates.
	ProgressFunc = imgtype.ProgressFunc
)
