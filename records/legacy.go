package records

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/locator"
)

const legacyNumber = `(-?\d*\.?\d*)`

// legacyLine matches "<path>" ShiftX ShiftY ScaleX ScaleY Width.
var legacyLine = regexp.MustCompile(`^"(` + namePattern + `)"` +
	`\s` + legacyNumber + `\s` + legacyNumber + `\s` + legacyNumber + `\s` + legacyNumber +
	`\s(\d*\.?\d*)$`)

// ReadLegacy parses legacy-format lines from r.
//
// The reader is tolerant. Lines that do not match, names with interior
// whitespace, names outside the naming grammar and unparsable numbers are
// logged and skipped. Names are repaired with the configured Corrections
// table. When a base name repeats, an identical record is dropped; for a
// conflicting record the later one wins only if the name is on the
// known-doubled list, otherwise the first is kept.
//
// Width and shifts are rounded half away from zero. Rotation is always 0.
func ReadLegacy(r io.Reader, opts ...Option) ([]Record, error) {
	cfg := newConfig(opts)
	log := cfg.logger.With("corrections", cfg.corrections.Version)

	var (
		recs  []Record
		index = make(map[string]int)
	)
	err := scanLines(r, func(n int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		rec, ok := parseLegacy(cfg, n, line)
		if !ok {
			return nil
		}

		i, seen := index[rec.Base]
		switch {
		case !seen:
			index[rec.Base] = len(recs)
			recs = append(recs, rec)
		case recs[i] == rec:
			log.Debug("dropping duplicate legacy record", "line", n, "base", rec.Base)
		case cfg.corrections.IsDoubled(rec.Base):
			log.Warn("conflicting legacy record for known doubled name, keeping later",
				"line", n, "base", rec.Base)
			recs[i] = rec
		default:
			log.Warn("conflicting legacy record, keeping first", "line", n, "base", rec.Base)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// parseLegacy converts one line. It logs and reports false for lines that
// must be skipped.
func parseLegacy(cfg config, n int, line string) (Record, bool) {
	log := cfg.logger
	m := legacyLine.FindStringSubmatch(line)
	if m == nil {
		log.Warn("skipping malformed legacy line", "line", n, "text", line)
		return Record{}, false
	}

	name := pathutil.Stem(m[1])
	if strings.ContainsFunc(name, unicode.IsSpace) {
		log.Info("skipping legacy name with whitespace", "line", n, "name", name)
		return Record{}, false
	}
	if fixed, ok := cfg.corrections.Rename(name); ok {
		log.Debug("renamed legacy name", "line", n, "from", name, "to", fixed)
		name = fixed
	}
	base, err := locator.Parse(name).Base()
	if err != nil {
		log.Warn("skipping invalid legacy name", "line", n, "name", name)
		return Record{}, false
	}

	nums := make([]float64, 5)
	for i := range nums {
		v, err := strconv.ParseFloat(m[2+i], 64)
		if err != nil {
			log.Warn("skipping legacy line with bad number", "line", n, "field", i+1, "text", m[2+i])
			return Record{}, false
		}
		nums[i] = v
	}
	shiftX, err1 := roundInt(nums[0])
	shiftY, err2 := roundInt(nums[1])
	width, err3 := roundInt(nums[4])
	if err := errors.Join(err1, err2, err3); err != nil {
		log.Warn("skipping legacy line with out of range value", "line", n, "error", err)
		return Record{}, false
	}

	return Record{
		Base:   base,
		Width:  width,
		ShiftX: shiftX,
		ShiftY: shiftY,
		ScaleX: nums[2],
		ScaleY: nums[3],
	}, true
}

// roundInt rounds half away from zero and checks the int32 range of the
// current format.
func roundInt(v float64) (int, error) {
	r := math.Round(v)
	if r < math.MinInt32 || r > math.MaxInt32 {
		return 0, fmt.Errorf("value %v out of range", v)
	}
	return int(r), nil
}

// LoadLegacy reads the legacy record file at path. A missing file yields
// no records and no error.
func LoadLegacy(path string, opts ...Option) ([]Record, error) {
	var recs []Record
	err := readCompressed(path, func(r io.Reader) error {
		var err error
		recs, err = ReadLegacy(r, opts...)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}
