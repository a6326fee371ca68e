// Package availability caches whether the volumes holding image roots are
// reachable.
//
// Removable and network volumes are slow to probe when absent, so results
// are kept for a short TTL. A Checker is owned by its caller; there is no
// process-wide cache.
package availability

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/meigma/portrait/internal/imgtype"
)

const (
	// DefaultTTL is how long a probe result is trusted.
	DefaultTTL = time.Minute

	// DefaultSize is the number of volume roots remembered.
	DefaultSize = 64
)

// ErrUnavailable is returned by Check when the volume is not reachable.
var ErrUnavailable = imgtype.ErrUnavailable

type entry struct {
	available bool
	expiresAt time.Time
}

// Checker probes volume roots and caches the answers.
// It is safe for concurrent use.
type Checker struct {
	cache  *lru.ARCCache[string, entry]
	ttl    time.Duration
	stat   func(string) (fs.FileInfo, error)
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTTL sets how long results are cached. Non-positive values disable
// caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Checker) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for probe results.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithStat replaces the filesystem probe.
func WithStat(stat func(string) (fs.FileInfo, error)) Option {
	return func(c *Checker) {
		c.stat = stat
	}
}

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// New creates a Checker.
func New(opts ...Option) (*Checker, error) {
	c := &Checker{
		ttl:  DefaultTTL,
		stat: os.Stat,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	cache, err := lru.NewARC[string, entry](DefaultSize)
	if err != nil {
		return nil, fmt.Errorf("create availability cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Available reports whether the volume root of path exists and is a
// directory.
func (c *Checker) Available(path string) bool {
	root := VolumeRoot(path)
	now := c.now()
	if e, ok := c.cache.Get(root); ok && e.expiresAt.After(now) {
		return e.available
	}

	info, err := c.stat(root)
	available := err == nil && info.IsDir()
	c.logger.Debug("probed volume", "root", root, "available", available)
	if c.ttl > 0 {
		c.cache.Add(root, entry{available: available, expiresAt: now.Add(c.ttl)})
	}
	return available
}

// Check returns ErrUnavailable if the volume root of path is not
// reachable.
func (c *Checker) Check(path string) error {
	if !c.Available(path) {
		return fmt.Errorf("%w: %s", ErrUnavailable, VolumeRoot(path))
	}
	return nil
}

// Reset forgets every cached result.
func (c *Checker) Reset() {
	c.cache.Purge()
}

// VolumeRoot returns the volume that holds path: the drive root where
// paths carry a volume name, otherwise the first directory under the
// filesystem root. Relative paths are resolved against the working
// directory first.
func VolumeRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	sep := string(filepath.Separator)
	vol := filepath.VolumeName(abs)
	if vol != "" {
		return vol + sep
	}
	first, _, _ := strings.Cut(strings.TrimLeft(abs, sep), sep)
	return sep + first
}
