package portrait

import (
	"log/slog"
	"time"

	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/records"
)

// Option configures a Library.
type Option func(*Library) error

// WithLogger sets the logger passed to every component.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) error {
		l.logger = logger
		return nil
	}
}

// WithDecoder sets the image decoder used by Load.
func WithDecoder(decode imgtype.DecodeFunc) Option {
	return func(l *Library) error {
		l.decode = decode
		return nil
	}
}

// WithAvailabilityTTL enables the root availability check with the given
// cache TTL. Resolve then fails with ErrUnavailable while the volume is
// unreachable.
func WithAvailabilityTTL(ttl time.Duration) Option {
	return func(l *Library) error {
		l.availTTL = ttl
		l.checkAvail = true
		return nil
	}
}

// WithCorrections replaces the legacy name correction table used when
// migrating old record files.
func WithCorrections(c records.Corrections) Option {
	return func(l *Library) error {
		l.recordOpts = append(l.recordOpts, records.WithCorrections(c))
		return nil
	}
}

// WithCompressionLevel sets the deflate level used by Pack.
func WithCompressionLevel(level int) Option {
	return func(l *Library) error {
		l.createOpts = append(l.createOpts, archive.CreateWithCompressionLevel(level))
		return nil
	}
}

// WithMaxEntries bounds the number of entries accepted when reading or
// writing an archive. Zero uses archive.DefaultMaxEntries. Negative means
// no limit.
func WithMaxEntries(n int) Option {
	return func(l *Library) error {
		l.maxEntries = n
		l.createOpts = append(l.createOpts, archive.CreateWithMaxEntries(n))
		return nil
	}
}

// WithProgress sets a callback for Pack and Unpack progress.
func WithProgress(fn imgtype.ProgressFunc) Option {
	return func(l *Library) error {
		l.progress = fn
		return nil
	}
}
