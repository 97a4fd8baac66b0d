package fsdriver

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoDriver_Stat(t *testing.T) {
	d := NewOsDriver()
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	testCases := []struct {
		name     string
		path     string
		expected Kind
	}{
		{"Directory", dir, Directory},
		{"File", file, File},
		{"Missing", filepath.Join(dir, "nope"), Missing},
		{"Missing below missing", filepath.Join(dir, "nope", "deeper"), Missing},
		{"Missing below a file", filepath.Join(file, "child"), Missing},
		{"Missing two levels below a file", filepath.Join(file, "child", "grandchild"), Missing},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := d.Stat(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, kind)
		})
	}
}

func TestAferoDriver_CopyFile(t *testing.T) {
	d := NewAferoDriver(afero.NewOsFs(), "", 16) // tiny buffer forces several reads
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	content := []byte("the quick brown fox jumps over the lazy dog")
	require.NoError(t, os.WriteFile(src, content, 0444))

	require.NoError(t, d.CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "copy must keep the owner-write bit")
	}
}

func TestAferoDriver_CreateTemp(t *testing.T) {
	tempDir := t.TempDir()
	d := NewAferoDriver(afero.NewOsFs(), tempDir, 0)

	p, err := d.CreateTemp([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, tempDir, filepath.Dir(p))

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	empty, err := d.CreateTemp(nil)
	require.NoError(t, err)
	info, err := os.Stat(empty)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestAferoDriver_OpenExclusive(t *testing.T) {
	d := NewOsDriver()
	file := filepath.Join(t.TempDir(), "locked.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	h, err := d.OpenExclusive(file)
	require.NoError(t, err)

	// A second exclusive open must fail while the first handle is held.
	h2, err := d.OpenExclusive(file)
	if err == nil {
		h2.Close()
		t.Fatal("expected second exclusive open to fail")
	}
	assert.True(t, IsInUse(err), "expected an in-use error, got %v", err)

	require.NoError(t, h.Close())

	h3, err := d.OpenExclusive(file)
	require.NoError(t, err, "lock must be released on Close")
	require.NoError(t, h3.Close())

	_, err = d.OpenExclusive(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, IsNotExist(err))
}

func TestAferoDriver_MemMapFs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("in-memory paths below use forward slashes")
	}
	mem := afero.NewMemMapFs()
	d := NewAferoDriver(mem, "/tmp", 0)

	require.NoError(t, d.Mkdir("/data"))
	require.NoError(t, d.Mkdir("/data/sub"))
	require.NoError(t, afero.WriteFile(mem, "/data/b.txt", []byte("b"), 0644))
	require.NoError(t, afero.WriteFile(mem, "/data/a.txt", []byte("a"), 0644))

	names, err := d.ReadDirNames("/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names)

	var visited []string
	require.NoError(t, d.Walk("/data", func(path string, info fs.FileInfo, err error) error {
		require.NoError(t, err)
		visited = append(visited, path)
		return nil
	}))
	assert.Equal(t, []string{"/data", "/data/a.txt", "/data/b.txt", "/data/sub"}, visited)

	h, err := d.OpenExclusive("/data/a.txt")
	require.NoError(t, err)
	require.NoError(t, h.Close())

	r, err := d.Open("/data/b.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "b", string(got))

	require.NoError(t, d.RemoveAll("/data"))
	kind, err := d.Stat("/data")
	require.NoError(t, err)
	assert.Equal(t, Missing, kind)
}

func TestErrorClassification(t *testing.T) {
	perm := &fs.PathError{Op: "remove", Path: "/x", Err: fs.ErrPermission}
	assert.True(t, IsPermission(perm))
	assert.True(t, IsPermission(fmt.Errorf("wrapped: %w", perm)))
	assert.False(t, IsPermission(nil))
	assert.False(t, IsPermission(fs.ErrNotExist))

	assert.True(t, IsNotExist(&fs.PathError{Op: "stat", Path: "/x", Err: fs.ErrNotExist}))
	assert.True(t, IsExist(&fs.PathError{Op: "mkdir", Path: "/x", Err: fs.ErrExist}))
	assert.False(t, IsInUse(nil))
	assert.False(t, IsNotDir(nil))
	assert.False(t, IsNotDir(fs.ErrNotExist))
}

func TestIsNotDir_HostFilesystem(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := os.Stat(filepath.Join(file, "child"))
	require.Error(t, err)
	assert.True(t, IsNotDir(err), "expected a not-a-directory error, got %v", err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "missing", Missing.String())
	assert.Equal(t, "file", File.String())
	assert.Equal(t, "directory", Directory.String())
	assert.Equal(t, "unknown_kind(7)", Kind(7).String())
}
