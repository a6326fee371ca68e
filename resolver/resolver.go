// Package resolver finds every variant image of a group across the group
// archive and the loose group directory.
//
// For a base name such as "Actor12b" the resolver reads the entry names
// of root/Actor/Actor12b.ima and then lists root/Actor/12b for files
// matching Actor12b*.jpg. Loose files shadow archived entries of the same
// name, so an edited image on disk takes effect without rebuilding the
// archive. Names compare case-insensitively throughout.
package resolver

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/availability"
	"github.com/meigma/portrait/internal/file"
	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/locator"
)

// Sentinel errors re-exported from internal/imgtype.
var (
	// ErrNameFormat is returned for a base name outside the naming grammar.
	ErrNameFormat = imgtype.ErrNameFormat

	// ErrUnsupportedType is returned by Load for a path that is neither an
	// image nor an archive.
	ErrUnsupportedType = imgtype.ErrUnsupportedType

	// ErrUnavailable is returned when the volume holding the root is not
	// reachable.
	ErrUnavailable = imgtype.ErrUnavailable

	// ErrNotFound is returned when a variant is missing from its archive.
	ErrNotFound = imgtype.ErrNotFound
)

// Resolver resolves groups under one image root.
// It is safe for concurrent use.
type Resolver struct {
	root   string
	logger *slog.Logger
	decode imgtype.DecodeFunc
	avail  *availability.Checker
	pool   *file.InflatePool

	maxEntries int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for resolution diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithDecoder sets the image decoder used by Load. The default decodes
// any format registered with the image package.
func WithDecoder(decode imgtype.DecodeFunc) Option {
	return func(r *Resolver) {
		r.decode = decode
	}
}

// WithAvailability makes Resolve fail fast with ErrUnavailable when the
// root's volume is not reachable.
func WithAvailability(c *availability.Checker) Option {
	return func(r *Resolver) {
		r.avail = c
	}
}

// WithMaxEntries bounds the table size of archives the resolver opens.
// Zero uses archive.DefaultMaxEntries. Negative means no limit.
func WithMaxEntries(n int) Option {
	return func(r *Resolver) {
		r.maxEntries = n
	}
}

// New creates a Resolver for root.
func New(root string, opts ...Option) *Resolver {
	r := &Resolver{
		root:   root,
		decode: imgtype.DefaultDecode,
		pool:   file.NewInflatePool(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Root returns the image root.
func (r *Resolver) Root() string {
	return r.root
}

func (r *Resolver) readerOptions() []archive.Option {
	return []archive.Option{
		archive.WithLogger(r.logger),
		archive.WithInflatePool(r.pool),
		archive.WithMaxEntries(r.maxEntries),
	}
}

// Resolve returns every variant of the group named by base.
//
// A missing archive or group directory contributes nothing. A corrupt
// archive fails the whole resolution.
func (r *Resolver) Resolve(base string) (*Set, error) {
	tok := locator.Parse(base)
	archivePath, err := tok.ArchivePath(r.root)
	if err != nil {
		return nil, err
	}
	dir, err := tok.GroupDirectoryPath(r.root)
	if err != nil {
		return nil, err
	}
	pattern, err := tok.GroupSearchPattern()
	if err != nil {
		return nil, err
	}
	if r.avail != nil {
		if err := r.avail.Check(r.root); err != nil {
			return nil, err
		}
	}

	set := newSet(base)

	names, err := archive.Names(archivePath, r.readerOptions()...)
	switch {
	case err == nil:
		for _, name := range names {
			set.put(name, Source{Path: archivePath, Name: name})
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("resolve %s: %w", base, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("resolve %s: %w", base, err)
	}
	loose := 0
	for _, d := range entries {
		if !d.Type().IsRegular() || !pathutil.Match(d.Name(), pattern) {
			continue
		}
		name := pathutil.Stem(d.Name())
		set.put(name, Source{Path: filepath.Join(dir, d.Name()), Name: name})
		loose++
	}

	r.logger.Debug("group resolved", "base", base, "archived", len(names), "loose", loose, "variants", set.Len())
	return set, nil
}

// Load decodes the image src points at.
func (r *Resolver) Load(src Source) (image.Image, error) {
	switch src.Kind() {
	case KindFile:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := r.decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", src.Path, err)
		}
		return img, nil
	case KindArchive:
		return archive.LoadEntryImage(src.Path, src.Name, r.decode, r.readerOptions()...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, pathutil.Ext(src.Path))
	}
}

// LoadVariant decodes the variant name stored at path, which is either a
// loose image or an archive.
func (r *Resolver) LoadVariant(path, name string) (image.Image, error) {
	return r.Load(Source{Path: path, Name: name})
}

// ReadVariant returns the encoded bytes of the variant name stored at path.
func (r *Resolver) ReadVariant(path, name string) ([]byte, error) {
	src := Source{Path: path, Name: name}
	switch src.Kind() {
	case KindFile:
		return os.ReadFile(path) //nolint:gosec // path comes from Resolve or the caller
	case KindArchive:
		return archive.LoadEntry(path, name, r.readerOptions()...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, pathutil.Ext(path))
	}
}

