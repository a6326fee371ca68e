package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/portrait/internal/testutil"
)

// runCLI executes one command against root with an empty HOME and working
// directory, so no user configuration is picked up.
func runCLI(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// isolate points HOME and the working directory at fresh temp dirs and
// returns an image root.
func isolate(t *testing.T) string {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	return t.TempDir()
}

func writeGroup(t *testing.T, root string) map[string][]byte {
	t.Helper()

	files := map[string][]byte{
		"Actor/12b/Actor12b.jpg":       testutil.JPEG(t, 8, 8, 10),
		"Actor/12b/Actor12b Smile.jpg": testutil.JPEG(t, 8, 8, 90),
	}
	testutil.WriteFiles(t, root, files)
	return files
}

func TestPackGroup(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)

	stdout, _, err := runCLI(t, root, "pack", "Actor12b")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Packed 2 files")
	assert.FileExists(t, filepath.Join(root, "Actor", "Actor12b.ima"))

	_, _, err = runCLI(t, root, "pack", "Actor12b")
	require.Error(t, err, "existing archives are never overwritten")
}

func TestPackDryRun(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)

	stdout, _, err := runCLI(t, root, "pack", "--dry-run", "Actor12b")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Actor12b Smile.jpg")
	assert.Contains(t, stdout, "Output file:")
	assert.Contains(t, stdout, filepath.Join(root, "Actor", "Actor12b.ima"))
	assert.NoFileExists(t, filepath.Join(root, "Actor", "Actor12b.ima"))
}

func TestPackSampleFile(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)

	_, _, err := runCLI(t, root, "pack", filepath.Join(root, "Actor", "12b", "Actor12b.jpg"))
	require.NoError(t, err)
	// The output is named after the first file in descending order.
	assert.FileExists(t, filepath.Join(root, "Actor", "12b", "Actor12b.ima"))
}

func TestListCatUnpack(t *testing.T) {
	root := isolate(t)
	files := writeGroup(t, root)
	_, _, err := runCLI(t, root, "pack", "Actor12b")
	require.NoError(t, err)
	archivePath := filepath.Join(root, "Actor", "Actor12b.ima")

	stdout, _, err := runCLI(t, root, "ls", archivePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Actor12b Smile")
	assert.Contains(t, stdout, "2 entries")

	stdout, _, err = runCLI(t, root, "cat", archivePath, "actor12b smile")
	require.NoError(t, err)
	assert.Equal(t, files["Actor/12b/Actor12b Smile.jpg"], []byte(stdout))

	_, _, err = runCLI(t, root, "cat", archivePath, "Actor12b Wink")
	require.Error(t, err)

	out := filepath.Join(t.TempDir(), "unpacked")
	stdout, _, err = runCLI(t, root, "unpack", "--match", "*smile", archivePath, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Extracted 1 files")
	data, err := os.ReadFile(filepath.Join(out, "Actor12b Smile.jpg"))
	require.NoError(t, err)
	assert.Equal(t, files["Actor/12b/Actor12b Smile.jpg"], data)
	assert.NoFileExists(t, filepath.Join(out, "Actor12b.jpg"))
}

func TestGroup(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)
	testutil.WriteDeflated(t, filepath.Join(root, "Images.dbx"), `"Actor12b.jpg" 3 4 -1 1 120`+"\n")

	stdout, _, err := runCLI(t, root, "group", "Actor12b")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Smile")
	assert.Contains(t, stdout, "file")
	assert.Contains(t, stdout, "120")
	assert.NoFileExists(t, filepath.Join(root, "Images.dbz"), "group never migrates")

	_, _, err = runCLI(t, root, "group", "not a name")
	require.Error(t, err)
}

func TestRecordsShowAndMigrate(t *testing.T) {
	root := isolate(t)
	testutil.WriteDeflated(t, filepath.Join(root, "Images.dbx"),
		`"Kat2.jpg" 1 2 1 1 100`+"\n"+`"Actor1.jpg" 0 0 -1 1 50`+"\n")

	stdout, _, err := runCLI(t, root, "records", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Kat2")
	assert.Contains(t, stdout, "(legacy)")

	stdout, _, err = runCLI(t, root, "records", "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Migrated 2 records")
	assert.FileExists(t, filepath.Join(root, "Images.dbz"))

	stdout, _, err = runCLI(t, root, "records", "migrate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Already migrated")

	stdout, _, err = runCLI(t, root, "records", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Images.dbz")
	assert.NotContains(t, stdout, "(legacy)")
}

func TestVerify(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)
	_, _, err := runCLI(t, root, "pack", "Actor12b")
	require.NoError(t, err)

	stdout, _, err := runCLI(t, root, "verify", "-j", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 archives verified")

	bad := filepath.Join(root, "Kat", "Kat3.ima")
	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0o755))
	require.NoError(t, os.WriteFile(bad, []byte("ima2\x00\x00\x00\x00"), 0o644))

	stdout, _, err = runCLI(t, root, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 archives failed")
	assert.Contains(t, stdout, "Kat3.ima")
}

func TestInvalidLogLevel(t *testing.T) {
	root := isolate(t)

	_, _, err := runCLI(t, root, "--log-level", "loud", "records", "show")
	require.Error(t, err)
}

func TestWriteLockHeld(t *testing.T) {
	root := isolate(t)
	writeGroup(t, root)

	ctx := newCommandContext(new(string), &root, new(string))
	err := ctx.withWriteLock(func() error {
		_, _, err := runCLI(t, root, "pack", "Actor12b")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another portrait command")
}

func TestIsGroupName(t *testing.T) {
	tests := []struct {
		arg  string
		want bool
	}{
		{"Actor12b", true},
		{"Actor12b Smile", true},
		{"Actor12b*.jpg", false},
		{"Actor12b.jpg", false},
		{filepath.Join("dir", "Actor12b"), false},
		{"12b", false},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, isGroupName(tt.arg))
		})
	}
}
