package resolver

import (
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/availability"
	"github.com/meigma/portrait/internal/testutil"
)

type fixture struct {
	root     string
	archive  string
	archived map[string][]byte
	loose    map[string][]byte
}

// newFixture builds root/Actor/Actor12b.ima holding two variants and a
// loose directory root/Actor/12b where one of them was edited.
func newFixture(t *testing.T) fixture {
	t.Helper()

	root := t.TempDir()
	staging := t.TempDir()
	f := fixture{
		root:    root,
		archive: filepath.Join(root, "Actor", "Actor12b.ima"),
		archived: map[string][]byte{
			"Actor12b":       testutil.JPEG(t, 4, 4, 10),
			"Actor12b Smile": testutil.JPEG(t, 4, 4, 20),
		},
		loose: map[string][]byte{
			"actor12b smile": testutil.JPEG(t, 6, 6, 30),
			"Actor12b Wink":  testutil.JPEG(t, 6, 6, 40),
		},
	}

	files := make(map[string][]byte)
	for name, data := range f.archived {
		files[name+".jpg"] = data
	}
	testutil.WriteFiles(t, staging, files)
	plan, err := archive.Plan(filepath.Join(staging, "Actor12b*.jpg"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.archive), 0o755))
	plan.Output = f.archive
	require.NoError(t, archive.CreateFromPlan(plan))

	files = map[string][]byte{"Actor/12b/Actor2.jpg": []byte("other group")}
	for name, data := range f.loose {
		files["Actor/12b/"+name+".jpg"] = data
	}
	testutil.WriteFiles(t, root, files)
	return f
}

func TestResolveLooseShadowsArchive(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	r := New(f.root)

	set, err := r.Resolve("Actor12b")
	require.NoError(t, err)
	assert.Equal(t, "Actor12b", set.Base())
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"Actor12b", "actor12b smile", "Actor12b Wink"}, set.Names())

	src, ok := set.Get("ACTOR12B SMILE")
	require.True(t, ok)
	assert.Equal(t, KindFile, src.Kind())
	data, err := r.ReadVariant(src.Path, src.Name)
	require.NoError(t, err)
	assert.Equal(t, f.loose["actor12b smile"], data)

	src, ok = set.Get("actor12b")
	require.True(t, ok)
	assert.Equal(t, KindArchive, src.Kind())
	assert.Equal(t, f.archive, src.Path)
	data, err = r.ReadVariant(src.Path, src.Name)
	require.NoError(t, err)
	assert.Equal(t, f.archived["Actor12b"], data)

	_, ok = set.Get("Actor2")
	assert.False(t, ok)
}

func TestSetVariantsAndAll(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	set, err := New(f.root).Resolve("Actor12b Smile")
	require.NoError(t, err)

	assert.Equal(t, []string{"actor12b smile", "Actor12b Wink"}, set.Variants("ACTOR12B"))

	var kinds []Kind
	for _, src := range set.All() {
		kinds = append(kinds, src.Kind())
	}
	assert.Equal(t, []Kind{KindArchive, KindFile, KindFile}, kinds)

	for name := range set.All() {
		assert.Equal(t, "Actor12b", name)
		break
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	r := New(f.root)
	set, err := r.Resolve("Actor12b")
	require.NoError(t, err)

	src, _ := set.Get("Actor12b")
	img, err := r.Load(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	src, _ = set.Get("Actor12b Wink")
	img, err = r.Load(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 6), img.Bounds())

	_, err = r.LoadVariant(f.archive, "Actor12b Frown")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.LoadVariant(filepath.Join(f.root, "Actor12b.png"), "Actor12b")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = r.ReadVariant(filepath.Join(f.root, "Actor12b.png"), "Actor12b")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestWithDecoder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	calls := 0
	r := New(f.root, WithDecoder(func(rd io.Reader) (image.Image, error) {
		calls++
		_, err := io.Copy(io.Discard, rd)
		return image.NewGray(image.Rect(0, 0, 1, 1)), err
	}))

	img, err := r.LoadVariant(f.archive, "actor12b")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())

	assert.Equal(t, 1, calls)
}

func TestWithMaxEntries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := New(f.root, WithMaxEntries(1)).Resolve("Actor12b")
	require.ErrorIs(t, err, archive.ErrTooManyEntries)

	set, err := New(f.root, WithMaxEntries(2)).Resolve("Actor12b")
	require.NoError(t, err)
	assert.NotZero(t, set.Len())
}

func TestResolveInvalidBase(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "12b", "Actor", "Actor12bc", "Actor-12"} {
		_, err := New(t.TempDir()).Resolve(base)
		assert.ErrorIs(t, err, ErrNameFormat, "base %q", base)
	}
}

func TestResolveEmptyGroup(t *testing.T) {
	t.Parallel()

	set, err := New(t.TempDir()).Resolve("Nobody7")
	require.NoError(t, err)
	assert.Zero(t, set.Len())
	assert.Empty(t, set.Names())
}

func TestResolveCorruptArchive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string][]byte{"Actor/Actor1.ima": []byte("ima2garbage")})

	_, err := New(root).Resolve("Actor1")
	assert.ErrorIs(t, err, archive.ErrInvalidFormat)
}

func TestResolveUnavailable(t *testing.T) {
	t.Parallel()

	checker, err := availability.New(availability.WithStat(func(string) (fs.FileInfo, error) {
		return nil, fs.ErrNotExist
	}))
	require.NoError(t, err)

	_, err = New(t.TempDir(), WithAvailability(checker)).Resolve("Actor1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
