// Package testutil provides fixture builders shared by package tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
)

// JPEG returns a small encoded JPEG whose pixels depend on seed, so that
// fixtures built with different seeds have different bytes.
func JPEG(tb testing.TB, width, height int, seed uint8) []byte {
	tb.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{
				R: seed,
				G: uint8(x * 255 / max(width, 1)),  //nolint:gosec // bounded by 255
				B: uint8(y * 255 / max(height, 1)), //nolint:gosec // bounded by 255
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		tb.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// WriteFiles creates files under dir. Keys are slash-separated relative
// paths; parent directories are created as needed.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()

	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			tb.Fatalf("write %s: %v", path, err)
		}
	}
}

// Deflate compresses data as one raw deflate stream.
func Deflate(tb testing.TB, data []byte) []byte {
	tb.Helper()

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		tb.Fatalf("new deflate writer: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		tb.Fatalf("deflate: %v", err)
	}
	if err := fw.Close(); err != nil {
		tb.Fatalf("close deflate: %v", err)
	}
	return buf.Bytes()
}

// WriteDeflated writes text to path as a raw deflate stream, the layout of
// the group record files.
func WriteDeflated(tb testing.TB, path, text string) {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, Deflate(tb, []byte(text)), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
