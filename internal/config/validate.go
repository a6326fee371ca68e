package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/klauspost/compress/flate"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.ImageRoot == "" {
		return errors.New("image_root must be set")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want auto, text or json)", c.Logging.Format)
	}
	if c.Archive.CompressionLevel < flate.HuffmanOnly || c.Archive.CompressionLevel > flate.BestCompression {
		return fmt.Errorf("archive.compression_level: %d outside %d..%d",
			c.Archive.CompressionLevel, flate.HuffmanOnly, flate.BestCompression)
	}
	return nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
