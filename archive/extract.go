package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/internal/pathutil"
)

// ExtractStats summarizes an extraction.
type ExtractStats struct {
	// FileCount is the number of entries written.
	FileCount int

	// TotalBytes is the number of uncompressed bytes written.
	TotalBytes uint64

	// Skipped is the number of entries that did not match the pattern.
	Skipped int
}

// extractConfig holds configuration for extraction.
type extractConfig struct {
	progress ProgressFunc
	logger   *slog.Logger
	readOpts []Option
}

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

// ExtractWithProgress sets a callback that receives progress events.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}

// ExtractWithLogger sets the logger for extraction.
// If not set, logging is disabled.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}

// ExtractWithReaderOptions passes options to the underlying Reader.
func ExtractWithReaderOptions(opts ...Option) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.readOpts = append(cfg.readOpts, opts...)
	}
}

// DefaultExtractDir returns the directory Extract uses by default: the
// archive path without its extension.
func DefaultExtractDir(path string) string {
	return strings.TrimSuffix(path, pathutil.Ext(path))
}

// Extract writes every entry of the archive at path whose name matches
// pattern to outputDir as <name>.jpg. An empty pattern matches every entry.
//
// outputDir must not exist; Extract never merges into an existing
// directory and fails with ErrAlreadyExists. The directory is created when
// the first matching entry is written, so an archive with no matches
// leaves nothing behind.
func Extract(path, outputDir, pattern string, opts ...ExtractOption) (ExtractStats, error) {
	var cfg extractConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var stats ExtractStats
	if _, err := os.Lstat(outputDir); err == nil {
		return stats, fmt.Errorf("%w: %s", ErrAlreadyExists, outputDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return stats, err
	}

	r, err := Open(path, cfg.readOpts...)
	if err != nil {
		return stats, err
	}
	defer r.Close()

	logger.Info("extracting archive", "archive", path, "output", outputDir, "pattern", pattern)

	created := false
	for r.Next() {
		e := r.Entry()
		if pattern != "" && !pathutil.Match(e.Name, pattern) {
			stats.Skipped++
			continue
		}
		if !pathutil.IsSingleElement(e.Name) {
			return stats, &fs.PathError{Op: "extract", Path: e.Name, Err: fs.ErrInvalid}
		}
		if !created {
			if err := os.Mkdir(outputDir, 0o755); err != nil {
				if errors.Is(err, fs.ErrExist) {
					return stats, fmt.Errorf("%w: %s", ErrAlreadyExists, outputDir)
				}
				return stats, err
			}
			created = true
		}

		n, err := extractEntry(r, filepath.Join(outputDir, e.Name+imgtype.ImageExt))
		if err != nil {
			return stats, err
		}
		stats.FileCount++
		stats.TotalBytes += uint64(n) //nolint:gosec // n is non-negative
		logger.Debug("entry extracted", "entry", e.Name, "size", n)
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{
				Stage:      StageExtracting,
				Name:       e.Name,
				BytesDone:  stats.TotalBytes,
				FilesDone:  stats.FileCount,
				FilesTotal: r.Len(),
			})
		}
	}
	if err := r.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// extractEntry writes the current body of r to a new file at dest.
// A partially written file is removed on failure.
func extractEntry(r *Reader, dest string) (n int64, err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // dest is a single element under outputDir
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrAlreadyExists, dest)
		}
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	n, err = r.CopyBody(f)
	if err != nil {
		return n, err
	}
	return n, nil
}
