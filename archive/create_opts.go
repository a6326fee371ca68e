package archive

import (
	"log/slog"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/portrait/internal/imgtype"
)

// Re-export progress types from internal/imgtype for the public API.
type (
	// ProgressEvent represents a progress update during operations.
	ProgressEvent = imgtype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = imgtype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	ProgressFunc = imgtype.ProgressFunc
)

// Re-export progress stage constants.
const (
	StageEnumerating  = imgtype.StageEnumerating
	StageCompressing  = imgtype.StageCompressing
	StageWritingTable = imgtype.StageWritingTable
	StageExtracting   = imgtype.StageExtracting
)

// createConfig holds configuration for archive creation.
type createConfig struct {
	level      int
	maxEntries int
	progress   ProgressFunc
	logger     *slog.Logger
}

// CreateOption configures archive creation.
type CreateOption func(*createConfig)

// CreateWithCompressionLevel sets the deflate level used for bodies and the
// table. Defaults to flate.DefaultCompression.
func CreateWithCompressionLevel(level int) CreateOption {
	return func(cfg *createConfig) {
		cfg.level = level
	}
}

// CreateWithMaxEntries limits the number of files packed into one archive.
// Zero uses DefaultMaxEntries. Negative means no limit.
func CreateWithMaxEntries(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.maxEntries = n
	}
}

// CreateWithProgress sets a callback that receives progress events.
func CreateWithProgress(fn ProgressFunc) CreateOption {
	return func(cfg *createConfig) {
		cfg.progress = fn
	}
}

// CreateWithLogger sets the logger for archive creation.
// If not set, logging is disabled.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}

func defaultCreateConfig() createConfig {
	return createConfig{level: flate.DefaultCompression}
}
