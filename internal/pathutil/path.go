// Package pathutil provides the name and path comparisons used by the image
// library: case-insensitive names, extension handling that accepts both
// slash styles, and a small wildcard matcher.
package pathutil

import (
	"path/filepath"
	"strings"
)

// IsSeparator reports whether c is a path separator. Both slash styles are
// accepted because legacy data and selectors may come from Windows.
func IsSeparator(c rune) bool {
	return c == '/' || c == '\\'
}

// Base returns the last element of path, splitting on either slash style.
// If path is empty, it returns "".
func Base(path string) string {
	if i := strings.LastIndexFunc(path, IsSeparator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Ext returns the extension of the last path element, including the dot.
func Ext(path string) string {
	base := Base(path)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i:]
	}
	return ""
}

// Stem returns the last path element with its extension removed.
func Stem(path string) string {
	base := Base(path)
	return strings.TrimSuffix(base, Ext(base))
}

// ChangeExt replaces the extension of path with ext.
func ChangeExt(path, ext string) string {
	return strings.TrimSuffix(path, Ext(path)) + ext
}

// HasExt reports whether path has extension ext, ignoring case.
func HasExt(path, ext string) bool {
	return strings.EqualFold(Ext(path), ext)
}

// Equal reports whether two names are equal ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Compare orders names case-insensitively, falling back to ordinal order
// for names that differ only in case.
func Compare(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// IsSingleElement reports whether name is a usable file name: not empty,
// not "." or "..", and free of separators.
func IsSingleElement(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsFunc(name, IsSeparator) {
		return false
	}
	return filepath.Base(name) == name
}
