// Package atomicfile replaces whole files through a temp file and rename, so
// readers never observe a partially written target.
package atomicfile

import (
	"io"
	"os"
	"path/filepath"
)

// Write streams content produced by fill into a temp file next to target,
// then renames it over target. On any failure the temp file is removed and
// target is left untouched.
func Write(target string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".portrait-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// WriteFile writes data to target atomically.
func WriteFile(target string, data []byte) error {
	return Write(target, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
