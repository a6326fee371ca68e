package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"github.com/meigma/portrait"
	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/internal/config"
)

// lockFile is created in the image root while a command rewrites files.
const lockFile = ".portrait.lock"

type commandContext struct {
	configFlag   *string
	rootFlag     *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *slog.Logger
}

func newCommandContext(configFlag, rootFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		rootFlag:     rootFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if root := strings.TrimSpace(*c.rootFlag); root != "" {
			if cfg.ImageRoot, err = config.ExpandPath(root); err != nil {
				c.configErr = fmt.Errorf("--root: %w", err)
				return
			}
		}
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the command logger, writing to w on first use.
func (c *commandContext) log(w io.Writer) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return slog.New(slog.DiscardHandler)
	}
	level, _ := cfg.LogLevel()
	c.logger = newLogger(w, level, cfg.Logging.Format)
	return c.logger
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" || (format == "auto" && !isTerminal(w)) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *commandContext) library(stderr io.Writer) (*portrait.Library, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := []portrait.Option{
		portrait.WithLogger(c.log(stderr)),
		portrait.WithCompressionLevel(cfg.Archive.CompressionLevel),
		portrait.WithMaxEntries(cfg.Archive.MaxEntries),
	}
	if cfg.Availability.Enabled {
		opts = append(opts, portrait.WithAvailabilityTTL(cfg.Availability.TTL()))
	}
	return portrait.Open(cfg.ImageRoot, opts...)
}

func (c *commandContext) readerOptions(stderr io.Writer) []archive.Option {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	return []archive.Option{
		archive.WithLogger(c.log(stderr)),
		archive.WithMaxEntries(cfg.Archive.MaxEntries),
	}
}

// withWriteLock runs fn while holding the root's writer lock. It fails
// immediately if another process holds the lock.
func (c *commandContext) withWriteLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ImageRoot, 0o755); err != nil {
		return fmt.Errorf("create image root: %w", err)
	}
	lockPath := filepath.Join(cfg.ImageRoot, lockFile)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another portrait command is writing to %s (lock %s)", cfg.ImageRoot, lockPath)
	}
	defer lock.Unlock() //nolint:errcheck // best-effort release on exit
	return fn()
}
