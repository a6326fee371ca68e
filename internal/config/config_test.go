package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, ".config", "portrait", "config.toml"), resolved)

	assert.Equal(t, filepath.Join(home, "portraits"), cfg.ImageRoot)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "auto", cfg.Logging.Format)
	assert.True(t, cfg.Availability.Enabled)
	assert.Equal(t, time.Minute, cfg.Availability.TTL())
	assert.Equal(t, flate.DefaultCompression, cfg.Archive.CompressionLevel)
	assert.Equal(t, 4096, cfg.Archive.MaxEntries)
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "portrait.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
image_root = "~/pics"

[logging]
level = "WARNING"
format = "console"

[availability]
enabled = false
ttl_seconds = 5

[archive]
compression_level = 9
verify_workers = 0
`), 0o644))

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, filepath.Join(home, "pics"), cfg.ImageRoot)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Availability.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Availability.TTL())
	assert.Equal(t, 9, cfg.Archive.CompressionLevel)
	assert.Equal(t, 4, cfg.Archive.VerifyWorkers)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("portrait.toml", []byte(`image_root = "/srv/images"`+"\n"), 0o644))

	cfg, resolved, exists, err := Load("")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "portrait.toml", filepath.Base(resolved))
	assert.Equal(t, filepath.Clean("/srv/images"), cfg.ImageRoot)
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "image_rot = \"x\"\n"},
		{name: "bad level", body: "[logging]\nlevel = \"loud\"\n"},
		{name: "bad format", body: "[logging]\nformat = \"xml\"\n"},
		{name: "bad compression", body: "[archive]\ncompression_level = 12\n"},
		{name: "bad toml", body: "image_root = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, _, _, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.ImageRoot = "/srv/images"
	data, err := cfg.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	got, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/images", filepath.ToSlash(got.ImageRoot))
}
