package archive

import (
	"bytes"
	"fmt"
	"image"

	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/internal/pathutil"
)

// DecodeFunc decodes image bytes into a bitmap.
type DecodeFunc = imgtype.DecodeFunc

// Names returns the entry names of the archive at path in stored order.
// Only the table is read.
func Names(path string, opts ...Option) ([]string, error) {
	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Names(), nil
}

// LoadEntry returns the uncompressed bytes of the entry called name.
// Names compare case-insensitively and the first match in table order
// wins. It returns ErrNotFound if no entry matches.
func LoadEntry(path, name string, opts ...Option) ([]byte, error) {
	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for r.Next() {
		if !pathutil.Equal(r.Entry().Name, name) {
			continue
		}
		data, err := r.ReadBody(nil)
		if err != nil {
			return nil, fmt.Errorf("load %s from %s: %w", name, path, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: entry %q in %s", ErrNotFound, name, path)
}

// LoadEntryImage loads the entry called name and decodes it with decode.
// A nil decode uses the standard image registry.
func LoadEntryImage(path, name string, decode DecodeFunc, opts ...Option) (image.Image, error) {
	data, err := LoadEntry(path, name, opts...)
	if err != nil {
		return nil, err
	}
	if decode == nil {
		decode = imgtype.DefaultDecode
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s from %s: %w", name, path, err)
	}
	return img, nil
}
