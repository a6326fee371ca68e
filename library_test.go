package portrait

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/portrait/internal/testutil"
	"github.com/meigma/portrait/records"
	"github.com/meigma/portrait/resolver"
)

func newLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string][]byte{
		"Actor/12b/Actor12b.jpg":       testutil.JPEG(t, 4, 4, 1),
		"Actor/12b/Actor12b Smile.jpg": testutil.JPEG(t, 4, 4, 2),
		"Actor/12b/Actor13.jpg":        []byte("other group"),
	})
	lib, err := Open(root, opts...)
	require.NoError(t, err)
	return lib
}

func TestPackResolveLoad(t *testing.T) {
	t.Parallel()

	var stages []string
	lib := newLibrary(t, WithCompressionLevel(1), WithProgress(func(ev ProgressEvent) {
		stages = append(stages, ev.Stage.String())
	}))

	plan, err := lib.PlanPack("Actor12b")
	require.NoError(t, err)
	require.Len(t, plan.Files, 2)
	assert.NoFileExists(t, plan.Output)

	out, err := lib.Pack("Actor12b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Root(), "Actor", "Actor12b.ima"), out)
	assert.Contains(t, stages, "compressing")

	_, err = lib.Pack("Actor12b")
	require.ErrorIs(t, err, ErrAlreadyExists)

	// Drop the loose copies so the set is served from the archive.
	require.NoError(t, os.Remove(filepath.Join(lib.Root(), "Actor", "12b", "Actor12b Smile.jpg")))

	set, err := lib.Resolve("Actor12b")
	require.NoError(t, err)
	assert.Equal(t, []string{"Actor12b", "Actor12b Smile"}, set.Names())

	src, ok := set.Get("actor12b smile")
	require.True(t, ok)
	assert.Equal(t, resolver.KindArchive, src.Kind())
	img, err := lib.Load(src)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestPackNoFiles(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	testutil.WriteFiles(t, lib.Root(), map[string][]byte{"Kat/3/readme.txt": []byte("x")})
	_, err := lib.Pack("Kat3")
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = lib.Pack("not a name")
	assert.ErrorIs(t, err, ErrNameFormat)
}

func TestUnpack(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	_, err := lib.Pack("Actor12b")
	require.NoError(t, err)

	stats, err := lib.Unpack("Actor12b", "", "*smile")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.FileExists(t, filepath.Join(lib.Root(), "Actor", "Actor12b", "Actor12b Smile.jpg"))

	_, err = lib.Unpack("Actor12b", "", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGroupsMigratesLegacy(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	recs, err := lib.Groups()
	require.NoError(t, err)
	assert.Empty(t, recs)

	testutil.WriteDeflated(t, filepath.Join(lib.Root(), records.LegacyFile),
		`"Actor12b.jpg" 1 2 -1 1 300`+"\n")
	recs, err = lib.Groups()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsFlipped())
	assert.FileExists(t, lib.Store().CurrentPath())

	recs[0].Flip()
	require.NoError(t, lib.SaveGroups(recs))
	recs, err = lib.Groups()
	require.NoError(t, err)
	assert.False(t, recs[0].IsFlipped())
}

func TestVerify(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	_, err := lib.Pack("Actor12b")
	require.NoError(t, err)
	testutil.WriteFiles(t, lib.Root(), map[string][]byte{"Kat/Kat3.ima": []byte("ima2\x00\x00\x00\x00")})

	results, err := lib.Verify(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byPath := make(map[string]VerifyResult)
	for _, res := range results {
		byPath[filepath.Base(res.Path)] = res
	}
	good := byPath["Actor12b.ima"]
	require.NoError(t, good.Err)
	assert.Equal(t, 2, good.Entries)
	assert.Positive(t, good.Bytes)
	assert.ErrorIs(t, byPath["Kat3.ima"].Err, ErrInvalidFormat)
}

func TestVerifyCancelled(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	_, err := lib.Pack("Actor12b")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lib.Verify(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMaxEntries(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t)
	limited, err := Open(lib.Root(), WithMaxEntries(1))
	require.NoError(t, err)

	_, err = limited.Pack("Actor12b")
	require.ErrorIs(t, err, ErrTooManyEntries)

	_, err = lib.Pack("Actor12b")
	require.NoError(t, err)

	results, err := limited.Verify(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrTooManyEntries)

	_, err = limited.Resolve("Actor12b")
	require.ErrorIs(t, err, ErrTooManyEntries)

	_, err = limited.Unpack("Actor12b", filepath.Join(t.TempDir(), "out"), "")
	require.ErrorIs(t, err, ErrTooManyEntries)
}

func TestResolveWithAvailability(t *testing.T) {
	t.Parallel()

	lib := newLibrary(t, WithAvailabilityTTL(time.Minute))
	set, err := lib.Resolve("Actor12b")
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}
