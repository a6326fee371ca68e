package archive

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/portrait/internal/testutil"
)

// rawEntry describes one body for buildRaw. size overrides the recorded
// length when non-negative.
type rawEntry struct {
	name string
	data []byte
	size int64
}

// buildRaw assembles an archive by hand so tests can plant inconsistencies
// the writer never produces.
func buildRaw(tb testing.TB, entries []rawEntry) []byte {
	tb.Helper()

	buf := bytes.NewBuffer(make([]byte, HeaderSize))
	table := make([]Entry, 0, len(entries))
	for _, re := range entries {
		size := re.size
		if size < 0 {
			size = int64(len(re.data))
		}
		table = append(table, Entry{Name: re.name, Offset: int64(buf.Len()), Size: size})
		buf.Write(testutil.Deflate(tb, re.data))
	}
	tableOffset := int32(buf.Len()) //nolint:gosec // test fixture
	buf.Write(testutil.Deflate(tb, appendTable(nil, table)))

	out := buf.Bytes()
	copy(out, encodeHeader(tableOffset))
	return out
}

// packGroup writes a group of JPEG files into dir and packs them.
func packGroup(tb testing.TB, dir string, names ...string) (string, map[string][]byte) {
	tb.Helper()

	files := make(map[string][]byte, len(names))
	contents := make(map[string][]byte, len(names))
	for i, name := range names {
		data := testutil.JPEG(tb, 8, 8, uint8(i*40)) //nolint:gosec // small index
		files[name+".jpg"] = data
		contents[name] = data
	}
	testutil.WriteFiles(tb, dir, files)

	out, err := Create(filepath.Join(dir, names[0]+"*.jpg"))
	require.NoError(tb, err)
	return out, contents
}

// setTableOffset rewrites the header of the archive at path.
func setTableOffset(tb testing.TB, path string, offset int32) {
	tb.Helper()

	data, err := os.ReadFile(path)
	require.NoError(tb, err)
	binary.LittleEndian.PutUint32(data[4:], uint32(offset)) //nolint:gosec // test fixture
	require.NoError(tb, os.WriteFile(path, data, 0o644))
}
