package archive

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/meigma/portrait/internal/imgtype"
)

const (
	// Marker identifies the archive format.
	Marker = "ima2"

	// HeaderSize is the size of the marker plus the table offset.
	HeaderSize = 8

	// Ext is the archive file extension.
	Ext = imgtype.ArchiveExt

	// DefaultMaxEntries is the default limit on the number of entries a
	// reader accepts. The whole table is held in memory, so the limit bounds
	// what a corrupt or hostile table can allocate.
	DefaultMaxEntries = 4096

	// maxNameLen bounds a single table name in bytes.
	maxNameLen = 1 << 12

	// maxInflateRatio is the largest expansion a deflate stream can reach.
	maxInflateRatio = 1032
)

// Entry describes one file stored in an archive.
type Entry struct {
	// Name is the source file name without extension.
	Name string

	// Offset is the absolute file offset of the entry's compressed body.
	Offset int64

	// Size is the uncompressed length of the entry in bytes.
	Size int64
}

// encodeHeader returns the 8 header bytes for a table at tableOffset.
func encodeHeader(tableOffset int32) []byte {
	hdr := make([]byte, HeaderSize)
	copy(hdr, Marker)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(tableOffset)) //nolint:gosec // two's complement int32 on disk
	return hdr
}

// decodeHeader validates the marker and returns the table offset.
func decodeHeader(hdr []byte) (int64, error) {
	if len(hdr) < HeaderSize || string(hdr[:4]) != Marker {
		return 0, fmt.Errorf("%w: missing %q marker", ErrInvalidFormat, Marker)
	}
	return int64(int32(binary.LittleEndian.Uint32(hdr[4:]))), nil //nolint:gosec // two's complement int32 on disk
}

// appendTable serializes entries followed by the empty-name terminator.
// Offsets and sizes must already fit int32.
func appendTable(dst []byte, entries []Entry) []byte {
	for _, e := range entries {
		dst = appendString(dst, e.Name)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Offset)) //nolint:gosec // checked by the writer
		dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Size))   //nolint:gosec // checked by the writer
	}
	return appendString(dst, "")
}

// appendString writes s with a 7-bit variable-length byte count prefix.
func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// tableLimits are the structural bounds a decoded table must satisfy.
type tableLimits struct {
	tableOffset int64
	maxEntries  int
}

// decodeTable reads the inflated table from r. Any malformed record fails
// the whole table.
func decodeTable(r io.Reader, lim tableLimits) ([]Entry, error) {
	br := bufio.NewReader(r)
	var (
		entries = make([]Entry, 0, 16)
		names   = make(map[string]struct{})
		offsets = make(map[int64]struct{})
		lowest  = lim.tableOffset
	)
	for {
		name, err := readString(br)
		if err != nil {
			return nil, tableErr(len(entries), err)
		}
		if name == "" {
			break
		}
		if lim.maxEntries > 0 && len(entries) >= lim.maxEntries {
			return nil, fmt.Errorf("%w: %w (limit %d)", ErrInvalidFormat, ErrTooManyEntries, lim.maxEntries)
		}

		offset, err := readInt32(br)
		if err != nil {
			return nil, tableErr(len(entries), err)
		}
		size, err := readInt32(br)
		if err != nil {
			return nil, tableErr(len(entries), err)
		}

		if offset < HeaderSize || offset >= lim.tableOffset {
			return nil, fmt.Errorf("%w: entry %q offset %d outside body region", ErrInvalidFormat, name, offset)
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: entry %q negative size %d", ErrInvalidFormat, name, size)
		}
		key := strings.ToLower(name)
		if _, dup := names[key]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrInvalidFormat, name)
		}
		if _, dup := offsets[offset]; dup {
			return nil, fmt.Errorf("%w: entry %q shares offset %d", ErrInvalidFormat, name, offset)
		}
		names[key] = struct{}{}
		offsets[offset] = struct{}{}
		lowest = min(lowest, offset)

		entries = append(entries, Entry{Name: name, Offset: offset, Size: size})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty file table", ErrInvalidFormat)
	}
	if lowest != HeaderSize {
		return nil, fmt.Errorf("%w: first body at %d, want %d", ErrInvalidFormat, lowest, HeaderSize)
	}
	if err := checkSpans(entries, lim.tableOffset); err != nil {
		return nil, err
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("%w: data after table terminator", ErrInvalidFormat)
		}
		return nil, tableErr(len(entries), err)
	}
	return entries, nil
}

// checkSpans rejects entries whose recorded size could not inflate from the
// bytes between their offset and the next body or the table.
func checkSpans(entries []Entry, tableOffset int64) error {
	byOffset := make([]Entry, len(entries))
	copy(byOffset, entries)
	slices.SortFunc(byOffset, func(a, b Entry) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	for i, e := range byOffset {
		end := tableOffset
		if i+1 < len(byOffset) {
			end = byOffset[i+1].Offset
		}
		if limit := (end - e.Offset + 1) * maxInflateRatio; e.Size > limit {
			return fmt.Errorf("%w: entry %q size %d exceeds what %d compressed bytes can hold",
				ErrInvalidFormat, e.Name, e.Size, end-e.Offset)
		}
	}
	return nil
}

func tableErr(i int, err error) error {
	if errors.Is(err, ErrInvalidFormat) {
		return err
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: table record %d: %v", ErrInvalidFormat, i, err)
}

func readString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", err
	}
	if n > maxNameLen {
		return "", fmt.Errorf("%w: name length %d exceeds %d", ErrInvalidFormat, n, maxNameLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidFormat)
	}
	return string(buf), nil
}

func readInt32(br *bufio.Reader) (int64, error) {
	var b [4]byte
	if _, err := io.ReadFull(br, b[:]); err != nil {
		return 0, err
	}
	return int64(int32(binary.LittleEndian.Uint32(b[:]))), nil //nolint:gosec // two's complement int32 on disk
}
