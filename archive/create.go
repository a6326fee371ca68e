package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/portrait/internal/file"
	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/internal/sizing"
	"github.com/meigma/portrait/internal/write"
)

// PlanFile is one source file selected for packing.
type PlanFile struct {
	// Path is the source file path.
	Path string

	// Entry is the entry name the file is stored under.
	Entry string

	// Size is the source file size in bytes.
	Size int64
}

// CreatePlan describes what Create would do for a selector.
type CreatePlan struct {
	// Files are the selected sources in stored order (descending by name,
	// ignoring case).
	Files []PlanFile

	// Output is the archive path: the first file with its extension
	// replaced by Ext.
	Output string
}

// TotalBytes returns the sum of the source sizes.
func (p *CreatePlan) TotalBytes() int64 {
	var n int64
	for _, f := range p.Files {
		n += f.Size
	}
	return n
}

// SelectorFor returns the selector that packs every sibling of path sharing
// its stem prefix and extension: dir/<stem>*<ext>.
func SelectorFor(path string) string {
	return filepath.Join(filepath.Dir(path), pathutil.Stem(path)+"*"+pathutil.Ext(path))
}

// Plan resolves selector without writing anything.
//
// The selector is a directory plus a file name pattern ('*' and '?',
// case-insensitive), for example "images/Actor/12b/Actor12b*.jpg".
// Existing archives in the directory are never selected.
func Plan(selector string) (*CreatePlan, error) {
	abs, err := filepath.Abs(selector)
	if err != nil {
		return nil, fmt.Errorf("resolve selector: %w", err)
	}
	dir, pattern := filepath.Split(abs)
	if pattern == "" {
		return nil, fmt.Errorf("invalid selector pattern %q", selector)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read selector directory: %w", err)
	}

	files := make([]PlanFile, 0, len(dirEntries))
	seen := make(map[string]string, len(dirEntries))
	for _, d := range dirEntries {
		if !d.Type().IsRegular() || !pathutil.Match(d.Name(), pattern) || pathutil.HasExt(d.Name(), Ext) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, err
		}
		entry := pathutil.Stem(d.Name())
		if entry == "" {
			continue
		}
		key := strings.ToLower(entry)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q and %q both map to %q", ErrDuplicateEntry, prev, d.Name(), entry)
		}
		seen[key] = d.Name()
		files = append(files, PlanFile{
			Path:  filepath.Join(dir, d.Name()),
			Entry: entry,
			Size:  info.Size(),
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, selector)
	}

	slices.SortFunc(files, func(a, b PlanFile) int {
		return pathutil.Compare(pathutil.Base(b.Path), pathutil.Base(a.Path))
	})

	return &CreatePlan{
		Files:  files,
		Output: pathutil.ChangeExt(files[0].Path, Ext),
	}, nil
}

// Create packs the files matched by selector into a new archive and
// returns its path.
//
// Create never overwrites: it fails with ErrAlreadyExists when the output
// archive exists. Bodies are written first, then the table, then the
// header; on any failure the partial output is removed.
func Create(selector string, opts ...CreateOption) (string, error) {
	cfg := defaultCreateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &writer{cfg: cfg, logger: cfg.logger}
	w.reportProgress(StageEnumerating, "", 0, 0, 0)

	plan, err := Plan(selector)
	if err != nil {
		return "", err
	}
	if err := w.write(plan); err != nil {
		return "", err
	}
	return plan.Output, nil
}

// CreateFromPlan writes the archive described by plan.
func CreateFromPlan(plan *CreatePlan, opts ...CreateOption) error {
	cfg := defaultCreateConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &writer{cfg: cfg, logger: cfg.logger}
	return w.write(plan)
}

// writer holds state for archive creation.
type writer struct {
	cfg    createConfig
	logger *slog.Logger
}

// reportProgress sends a progress event if a callback is configured.
func (w *writer) reportProgress(stage ProgressStage, name string, bytesDone uint64, filesDone, filesTotal int) {
	if w.cfg.progress == nil {
		return
	}
	w.cfg.progress(ProgressEvent{
		Stage:      stage,
		Name:       name,
		BytesDone:  bytesDone,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// log returns the logger, falling back to a discard logger if nil.
func (w *writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.logger
}

func (w *writer) write(plan *CreatePlan) (err error) {
	maxEntries := w.cfg.maxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxEntries > 0 && len(plan.Files) > maxEntries {
		return fmt.Errorf("%w: %d files, limit %d", ErrTooManyEntries, len(plan.Files), maxEntries)
	}

	out, err := os.OpenFile(plan.Output, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // output path derived from caller selector
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, plan.Output)
		}
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(plan.Output)
		}
	}()

	w.log().Info("creating archive", "output", plan.Output, "files", len(plan.Files))

	enc, err := flate.NewWriter(io.Discard, w.cfg.level)
	if err != nil {
		return fmt.Errorf("create deflate encoder: %w", err)
	}

	if _, err = out.Seek(HeaderSize, io.SeekStart); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(out, 64*1024)
	cw := &file.CountingWriter{W: bw, N: HeaderSize}
	buf := make([]byte, 32*1024)

	entries := make([]Entry, 0, len(plan.Files))
	var rawTotal uint64
	for i, pf := range plan.Files {
		entry, writeErr := w.writeEntry(cw, enc, buf, pf)
		if writeErr != nil {
			return writeErr
		}
		entries = append(entries, entry)
		rawTotal += uint64(entry.Size) //nolint:gosec // size is non-negative
		w.reportProgress(StageCompressing, entry.Name, rawTotal, i+1, len(plan.Files))
	}

	tableOffset, err := sizing.CountToInt32(cw.N, ErrSizeOverflow)
	if err != nil {
		return err
	}
	w.reportProgress(StageWritingTable, "", rawTotal, len(entries), len(entries))
	if err = write.Block(cw, appendTable(nil, entries), enc); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if _, err = out.WriteAt(encodeHeader(tableOffset), 0); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	w.log().Debug("archive written", "output", plan.Output, "entries", len(entries),
		"raw_bytes", rawTotal, "archive_bytes", cw.N)
	return nil
}

// writeEntry compresses one source file at the current position.
func (w *writer) writeEntry(cw *file.CountingWriter, enc *flate.Writer, buf []byte, pf PlanFile) (Entry, error) {
	offset, err := sizing.CountToInt32(cw.N, ErrSizeOverflow)
	if err != nil {
		return Entry{}, err
	}

	src, err := os.Open(pf.Path)
	if err != nil {
		return Entry{}, err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return Entry{}, err
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("not a regular file: %s", pf.Path)
	}
	if _, err := sizing.ToInt32(info.Size(), ErrSizeOverflow); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", pf.Path, err)
	}

	n, err := write.Entry(cw, src, enc, buf, info.Size())
	if err != nil {
		return Entry{}, fmt.Errorf("write %s: %w", pf.Path, err)
	}

	w.log().Debug("entry packed", "entry", pf.Entry, "offset", offset, "size", n)
	return Entry{Name: pf.Entry, Offset: int64(offset), Size: int64(n)}, nil //nolint:gosec // n bounded by int32 check above
}
