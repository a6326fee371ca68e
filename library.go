package portrait

import (
	"context"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/availability"
	"github.com/meigma/portrait/internal/file"
	"github.com/meigma/portrait/internal/imgtype"
	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/locator"
	"github.com/meigma/portrait/records"
	"github.com/meigma/portrait/resolver"
)

// Library provides the operations of one image root.
type Library struct {
	root   string
	logger *slog.Logger
	decode imgtype.DecodeFunc

	checkAvail bool
	availTTL   time.Duration
	progress   imgtype.ProgressFunc
	maxEntries int

	recordOpts []records.Option
	createOpts []archive.CreateOption

	store    *records.Store
	resolver *resolver.Resolver
	pool     *file.InflatePool
}

// Open returns a Library for root. The root is not touched until the first
// operation.
func Open(root string, opts ...Option) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	l := &Library{root: abs}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}

	l.recordOpts = append([]records.Option{records.WithLogger(l.logger)}, l.recordOpts...)
	l.store = records.NewStore(l.root, l.recordOpts...)
	l.pool = file.NewInflatePool()

	resolverOpts := []resolver.Option{resolver.WithLogger(l.logger), resolver.WithMaxEntries(l.maxEntries)}
	if l.decode != nil {
		resolverOpts = append(resolverOpts, resolver.WithDecoder(l.decode))
	}
	if l.checkAvail {
		checker, err := availability.New(availability.WithTTL(l.availTTL), availability.WithLogger(l.logger))
		if err != nil {
			return nil, err
		}
		resolverOpts = append(resolverOpts, resolver.WithAvailability(checker))
	}
	l.resolver = resolver.New(l.root, resolverOpts...)
	return l, nil
}

// Root returns the absolute image root.
func (l *Library) Root() string {
	return l.root
}

// Store returns the record store of the root.
func (l *Library) Store() *records.Store {
	return l.store
}

// Groups returns the group records, migrating the legacy record file on
// first use.
func (l *Library) Groups() ([]records.Record, error) {
	recs, migrated, err := l.store.Migrate()
	if err != nil {
		return nil, err
	}
	if migrated {
		l.logger.Info("group records migrated", "root", l.root, "records", len(recs))
	}
	return recs, nil
}

// SaveGroups replaces the group record file.
func (l *Library) SaveGroups(recs []records.Record) error {
	return l.store.Save(recs)
}

// Resolve returns every variant of the group named by base.
func (l *Library) Resolve(base string) (*resolver.Set, error) {
	return l.resolver.Resolve(base)
}

// Load decodes the variant src.
func (l *Library) Load(src resolver.Source) (image.Image, error) {
	return l.resolver.Load(src)
}

// ArchivePath returns the archive path of the group named by base.
func (l *Library) ArchivePath(base string) (string, error) {
	return locator.Parse(base).ArchivePath(l.root)
}

// GroupDirectory returns the loose file directory of the group named by
// base.
func (l *Library) GroupDirectory(base string) (string, error) {
	return locator.Parse(base).GroupDirectoryPath(l.root)
}

// PlanPack returns what Pack would write for the group named by base: the
// loose files of the group and the group's archive path as output.
func (l *Library) PlanPack(base string) (*archive.CreatePlan, error) {
	tok := locator.Parse(base)
	dir, err := tok.GroupDirectoryPath(l.root)
	if err != nil {
		return nil, err
	}
	pattern, err := tok.GroupSearchPattern()
	if err != nil {
		return nil, err
	}
	out, err := tok.ArchivePath(l.root)
	if err != nil {
		return nil, err
	}
	plan, err := archive.Plan(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	plan.Output = out
	return plan, nil
}

// Pack builds the archive of the group named by base from its loose files.
// It fails with ErrAlreadyExists if the group already has an archive.
func (l *Library) Pack(base string) (string, error) {
	plan, err := l.PlanPack(base)
	if err != nil {
		return "", err
	}
	opts := append([]archive.CreateOption{archive.CreateWithLogger(l.logger)}, l.createOpts...)
	if l.progress != nil {
		opts = append(opts, archive.CreateWithProgress(l.progress))
	}
	if err := archive.CreateFromPlan(plan, opts...); err != nil {
		return "", err
	}
	return plan.Output, nil
}

// Unpack extracts the archive of the group named by base into outputDir,
// or into the archive path without extension when outputDir is empty.
func (l *Library) Unpack(base, outputDir, pattern string) (archive.ExtractStats, error) {
	path, err := l.ArchivePath(base)
	if err != nil {
		return archive.ExtractStats{}, err
	}
	if outputDir == "" {
		outputDir = archive.DefaultExtractDir(path)
	}
	opts := []archive.ExtractOption{
		archive.ExtractWithLogger(l.logger),
		archive.ExtractWithReaderOptions(l.readerOptions()...),
	}
	if l.progress != nil {
		opts = append(opts, archive.ExtractWithProgress(l.progress))
	}
	return archive.Extract(path, outputDir, pattern, opts...)
}

// Archives lists every archive under the root in lexical order.
func (l *Library) Archives() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && pathutil.HasExt(path, archive.Ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// VerifyResult reports the outcome of reading one archive in full.
type VerifyResult struct {
	// Path is the archive path.
	Path string

	// Entries is the number of entries read.
	Entries int

	// Bytes is the total uncompressed size read.
	Bytes int64

	// Err is the first failure, or nil if every body inflated to its
	// recorded length.
	Err error
}

// Verify reads every body of every archive under the root, using up to
// concurrency readers at once; non-positive means no limit. Per-archive failures are reported
// in the results; the returned error is set only if the walk failed or
// ctx was cancelled.
func (l *Library) Verify(ctx context.Context, concurrency int) ([]VerifyResult, error) {
	paths, err := l.Archives()
	if err != nil {
		return nil, err
	}

	results := make([]VerifyResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = l.verifyArchive(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (l *Library) readerOptions() []archive.Option {
	return []archive.Option{
		archive.WithLogger(l.logger),
		archive.WithInflatePool(l.pool),
		archive.WithMaxEntries(l.maxEntries),
	}
}

func (l *Library) verifyArchive(path string) VerifyResult {
	res := VerifyResult{Path: path}
	r, err := archive.Open(path, l.readerOptions()...)
	if err != nil {
		res.Err = err
		return res
	}
	defer r.Close()

	for r.Next() {
		n, err := r.CopyBody(io.Discard)
		if err != nil {
			break
		}
		res.Entries++
		res.Bytes += n
	}
	res.Err = r.Err()
	if res.Err != nil {
		l.logger.Warn("archive failed verification", "archive", path, "error", res.Err)
	}
	return res
}
