package records

import (
	"errors"
	"path/filepath"
)

// Store reads and writes the record files of one image root.
//
// Saves replace the whole file. Store does not serialize concurrent
// writers; callers that share a root must coordinate saves themselves.
type Store struct {
	root string
	cfg  config
	opts []Option
}

// NewStore returns a Store for the image root directory.
func NewStore(root string, opts ...Option) *Store {
	return &Store{root: root, cfg: newConfig(opts), opts: opts}
}

// Root returns the image root directory.
func (s *Store) Root() string {
	return s.root
}

// CurrentPath returns the path of the current record file.
func (s *Store) CurrentPath() string {
	return filepath.Join(s.root, CurrentFile)
}

// LegacyPath returns the path of the legacy record file.
func (s *Store) LegacyPath() string {
	return filepath.Join(s.root, LegacyFile)
}

// Load reads the current record file. It returns ErrNotFound if the file
// does not exist.
func (s *Store) Load() ([]Record, error) {
	return LoadCurrent(s.CurrentPath())
}

// Save replaces the current record file with recs.
func (s *Store) Save(recs []Record) error {
	if err := SaveCurrent(s.CurrentPath(), recs); err != nil {
		return err
	}
	s.cfg.logger.Debug("records saved", "path", s.CurrentPath(), "records", len(recs))
	return nil
}

// LoadLegacy reads the legacy record file. A missing file yields no
// records.
func (s *Store) LoadLegacy() ([]Record, error) {
	return LoadLegacy(s.LegacyPath(), s.opts...)
}

// Migrate returns the current records, converting legacy data first if no
// current file exists. migrated reports whether a current file was written.
// With neither file present it returns no records and no error.
func (s *Store) Migrate() (recs []Record, migrated bool, err error) {
	recs, err = s.Load()
	if err == nil {
		return recs, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	recs, err = s.LoadLegacy()
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	if err := s.Save(recs); err != nil {
		return nil, false, err
	}
	s.cfg.logger.Info("migrated legacy records", "from", s.LegacyPath(), "to", s.CurrentPath(),
		"records", len(recs))
	return recs, true, nil
}
