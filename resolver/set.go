package resolver

import (
	"iter"
	"slices"

	"golang.org/x/text/cases"

	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/internal/pathutil"
)

// Kind says how a Source stores its image.
type Kind uint8

const (
	// KindUnknown is a path with an unsupported extension.
	KindUnknown Kind = iota

	// KindFile is a loose image file.
	KindFile

	// KindArchive is an entry inside a group archive.
	KindArchive
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Source locates one variant image.
type Source struct {
	// Path is the loose image file or the archive holding the entry.
	Path string

	// Name is the variant name, the file name without extension.
	Name string
}

// Kind classifies the source by the extension of Path.
func (s Source) Kind() Kind {
	switch {
	case pathutil.HasExt(s.Path, imgtype.ImageExt):
		return KindFile
	case pathutil.HasExt(s.Path, imgtype.ArchiveExt):
		return KindArchive
	default:
		return KindUnknown
	}
}

// Set maps variant names of one group to their sources.
// A Set is immutable once returned by Resolve.
type Set struct {
	base    string
	sources map[string]Source
}

func newSet(base string) *Set {
	return &Set{base: base, sources: make(map[string]Source)}
}

// fold returns the case-insensitive key for name. A Caser keeps state, so
// each call takes a fresh one.
func fold(name string) string {
	return cases.Fold().String(name)
}

func (s *Set) put(name string, src Source) {
	s.sources[fold(name)] = src
}

// Base returns the group base name the set was resolved for.
func (s *Set) Base() string {
	return s.base
}

// Get returns the source of variant name, ignoring case.
func (s *Set) Get(name string) (Source, bool) {
	src, ok := s.sources[fold(name)]
	return src, ok
}

// Len returns the number of variants.
func (s *Set) Len() int {
	return len(s.sources)
}

// Names returns the variant names in case-insensitive order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name)
	}
	slices.SortFunc(names, pathutil.Compare)
	return names
}

// Variants returns every name except current, in case-insensitive order.
func (s *Set) Variants(current string) []string {
	key := fold(current)
	return slices.DeleteFunc(s.Names(), func(name string) bool {
		return fold(name) == key
	})
}

// All iterates over the variants in case-insensitive name order.
func (s *Set) All() iter.Seq2[string, Source] {
	return func(yield func(string, Source) bool) {
		for _, name := range s.Names() {
			if !yield(name, s.sources[fold(name)]) {
				return
			}
		}
	}
}
