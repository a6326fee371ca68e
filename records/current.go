package records

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/portrait/internal/atomicfile"
)

const (
	namePattern  = `[\p{L}\p{N}_\s\-+$@%()\\/.:']+`
	intPattern   = `-?\d+`
	floatPattern = `-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`

	// maxLineLen bounds a single record line.
	maxLineLen = 1 << 16
)

var (
	currentLine = regexp.MustCompile(`^"(` + namePattern + `)"` +
		`\s(` + intPattern + `)\s(` + intPattern + `)\s(` + intPattern + `)` +
		`\s(` + floatPattern + `)\s(` + floatPattern + `)\s(` + floatPattern + `)$`)
	validName = regexp.MustCompile(`^` + namePattern + `$`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCurrent parses current-format lines from r. A UTF-8 byte order mark
// and CRLF line endings are accepted. Empty lines are accepted only at the
// end of the input.
func ReadCurrent(r io.Reader) ([]Record, error) {
	var (
		recs  []Record
		blank int
	)
	err := scanLines(r, func(n int, line string) error {
		if line == "" {
			if blank == 0 {
				blank = n
			}
			return nil
		}
		if blank != 0 {
			return fmt.Errorf("%w: line %d: empty record", ErrInvalidFormat, blank)
		}
		rec, err := parseCurrent(line)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidFormat, n, err)
		}
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func parseCurrent(line string) (Record, error) {
	m := currentLine.FindStringSubmatch(line)
	if m == nil {
		return Record{}, fmt.Errorf("malformed record %q", line)
	}
	rec := Record{Base: m[1]}
	ints := []*int{&rec.Width, &rec.ShiftX, &rec.ShiftY}
	for i, dst := range ints {
		v, err := strconv.ParseInt(m[2+i], 10, 32)
		if err != nil {
			return Record{}, err
		}
		*dst = int(v)
	}
	floats := []*float64{&rec.Rotation, &rec.ScaleX, &rec.ScaleY}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(m[5+i], 64)
		if err != nil {
			return Record{}, err
		}
		*dst = v
	}
	return rec, nil
}

// WriteCurrent writes recs to w as current-format lines in the given order.
// It fails with ErrInvalidFormat for a record that could not be read back.
func WriteCurrent(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	var line []byte
	for _, rec := range recs {
		if err := checkWritable(rec); err != nil {
			return err
		}
		line = appendCurrent(line[:0], rec)
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func checkWritable(rec Record) error {
	if !validName.MatchString(rec.Base) || strings.ContainsAny(rec.Base, "\r\n") {
		return fmt.Errorf("%w: record name %q cannot be stored", ErrInvalidFormat, rec.Base)
	}
	for _, v := range []int{rec.Width, rec.ShiftX, rec.ShiftY} {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return fmt.Errorf("%w: record %q: value %d out of range", ErrInvalidFormat, rec.Base, v)
		}
	}
	for _, v := range []float64{rec.Rotation, rec.ScaleX, rec.ScaleY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: record %q: value %v not finite", ErrInvalidFormat, rec.Base, v)
		}
	}
	return nil
}

func appendCurrent(dst []byte, rec Record) []byte {
	dst = append(dst, '"')
	dst = append(dst, rec.Base...)
	dst = append(dst, '"')
	for _, v := range []int{rec.Width, rec.ShiftX, rec.ShiftY} {
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, int64(v), 10)
	}
	for _, v := range []float64{rec.Rotation, rec.ScaleX, rec.ScaleY} {
		dst = append(dst, ' ')
		dst = strconv.AppendFloat(dst, v, 'f', -1, 64)
	}
	return append(dst, '\n')
}

// LoadCurrent reads the current-format record file at path.
// It returns ErrNotFound if the file does not exist so that callers can
// fall back to legacy migration.
func LoadCurrent(path string) ([]Record, error) {
	var recs []Record
	err := readCompressed(path, func(r io.Reader) error {
		var err error
		recs, err = ReadCurrent(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// SaveCurrent replaces the record file at path with recs. The new file is
// written next to the target and renamed into place, so a failed save
// leaves the previous file intact.
func SaveCurrent(path string, recs []Record) error {
	var buf bytes.Buffer
	if err := WriteCurrent(&buf, recs); err != nil {
		return err
	}
	return atomicfile.Write(path, func(w io.Writer) error {
		fw, err := flate.NewWriter(w, flate.BestCompression)
		if err != nil {
			return err
		}
		if _, err := fw.Write(buf.Bytes()); err != nil {
			return err
		}
		return fw.Close()
	})
}

// readCompressed opens path as a raw deflate stream and hands the inflated
// text to fn.
func readCompressed(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path) //nolint:gosec // record file path is caller-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	defer f.Close()

	fr := flate.NewReader(bufio.NewReader(f))
	defer fr.Close()

	if err := fn(fr); err != nil {
		var corrupt flate.CorruptInputError
		if errors.As(err, &corrupt) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// scanLines calls fn for every line of r with its 1-based number. A
// leading byte order mark and trailing carriage returns are removed.
func scanLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if n == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if err := fn(n, string(line)); err != nil {
			return err
		}
	}
	return sc.Err()
}
