package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if strings.TrimSpace(c.ImageRoot) == "" {
		c.ImageRoot = defaultImageRoot
	}
	var err error
	if c.ImageRoot, err = expandPath(strings.TrimSpace(c.ImageRoot)); err != nil {
		return fmt.Errorf("image_root: %w", err)
	}
	c.normalizeLogging()
	c.normalizeArchive()
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "auto":
		c.Logging.Format = defaultLogFormat
	case "console":
		c.Logging.Format = "text"
	}
}

func (c *Config) normalizeArchive() {
	if c.Archive.MaxEntries == 0 {
		c.Archive.MaxEntries = defaultMaxEntries
	}
	if c.Archive.VerifyWorkers <= 0 {
		c.Archive.VerifyWorkers = defaultVerifyWorkers
	}
	if c.Availability.TTLSeconds < 0 {
		c.Availability.TTLSeconds = 0
	}
}
