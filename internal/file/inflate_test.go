package file

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflateData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestInflatePool_Get(t *testing.T) {
	t.Parallel()

	original := []byte("hello world, this is a test of deflate compression")
	compressed := deflateData(t, original)

	pool := NewInflatePool()

	t.Run("basic decode", func(t *testing.T) {
		t.Parallel()
		r, release := pool.Get(bytes.NewReader(compressed))
		defer release()

		result, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, original, result)
	})

	t.Run("reader reuse", func(t *testing.T) {
		t.Parallel()
		for i := range 5 {
			r, release := pool.Get(bytes.NewReader(compressed))
			result, err := io.ReadAll(r)
			release()
			require.NoError(t, err, "iteration %d", i)
			assert.Equal(t, original, result, "iteration %d", i)
		}
	})
}

func TestInflatePool_NilPool(t *testing.T) {
	t.Parallel()

	original := []byte("test with nil pool")
	compressed := deflateData(t, original)

	var pool *InflatePool
	r, release := pool.Get(bytes.NewReader(compressed))
	defer release()

	result, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, original, result)
}

func TestInflatePool_Corrupt(t *testing.T) {
	t.Parallel()

	r, release := NewInflatePool().Get(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
	defer release()

	_, err := io.ReadAll(r)
	require.Error(t, err)
}

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cw := &CountingWriter{W: &buf, N: 8}
	_, err := cw.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), cw.N)
}

func TestCountingReader(t *testing.T) {
	t.Parallel()

	cr := &CountingReader{R: bytes.NewReader([]byte("abcdef"))}
	_, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), cr.N)
}
