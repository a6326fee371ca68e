package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds portrait settings.
type Config struct {
	ImageRoot    string       `toml:"image_root"`
	Logging      Logging      `toml:"logging"`
	Availability Availability `toml:"availability"`
	Archive      Archive      `toml:"archive"`
}

// Logging controls the CLI log handler.
type Logging struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`

	// Format is text, json or auto (text on a terminal, json otherwise).
	Format string `toml:"format"`
}

// Availability controls the image root volume check.
type Availability struct {
	Enabled    bool `toml:"enabled"`
	TTLSeconds int  `toml:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration.
func (a Availability) TTL() time.Duration {
	return time.Duration(a.TTLSeconds) * time.Second
}

// Archive controls packing and verification.
type Archive struct {
	// CompressionLevel is a deflate level from -2 (Huffman only) to 9;
	// -1 selects the library default.
	CompressionLevel int `toml:"compression_level"`

	// MaxEntries bounds the entries accepted per archive.
	MaxEntries int `toml:"max_entries"`

	// VerifyWorkers is the number of archives verified at once.
	VerifyWorkers int `toml:"verify_workers"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/portrait/config.toml")
}

// Load locates, parses and validates a configuration file. It returns the
// config, the resolved path and whether that file existed. A missing file
// is not an error.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath) //nolint:gosec // config path is user-provided by design
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("portrait.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules: a leading ~ is the home
// directory and the result is absolute.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
