package confirm

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
)

func TestEnsureDirectoryExists(t *testing.T) {
	t.Run("Creates every missing segment", func(t *testing.T) {
		c, root := newOsConfirmer(t)
		deep := filepath.Join(root, "a", "b", "c")

		require.NoError(t, c.EnsureDirectoryExists(deep, 0))

		info, err := os.Stat(deep)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Existing directory is a no-op", func(t *testing.T) {
		c, _, mem, clock, m := newMemConfirmer(t)
		require.NoError(t, mem.MkdirAll("/data/existing", 0755))

		require.NoError(t, c.EnsureDirectoryExists("/data/existing", 0))

		assert.Zero(t, clock.Sleeps())
		assert.Zero(t, m.DirsCreated.Load())
	})

	t.Run("Counts only the segments it created", func(t *testing.T) {
		c, _, mem, _, m := newMemConfirmer(t)
		require.NoError(t, mem.MkdirAll("/data", 0755))

		require.NoError(t, c.EnsureDirectoryExists("/data/x/y", 0))

		assert.EqualValues(t, 2, m.DirsCreated.Load())
		isDir, err := afero.IsDir(mem, "/data/x/y")
		require.NoError(t, err)
		assert.True(t, isDir)
	})

	t.Run("A file on the path is rejected without waiting", func(t *testing.T) {
		c, _, mem, clock, _ := newMemConfirmer(t)
		require.NoError(t, afero.WriteFile(mem, "/data/file.txt", []byte("x"), 0644))

		err := c.EnsureDirectoryExists("/data/file.txt/sub", 0)

		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.True(t, IsInvalidArgument(err))
		assert.Zero(t, clock.Sleeps())
	})

	t.Run("Permission denied on create is surfaced immediately", func(t *testing.T) {
		c, fd, mem, clock, _ := newMemConfirmer(t)
		require.NoError(t, mem.MkdirAll("/data", 0755))
		fd.mkdirErr = &fs.PathError{Op: "mkdir", Path: "/data/denied", Err: fs.ErrPermission}

		err := c.EnsureDirectoryExists("/data/denied", 0)

		assert.ErrorIs(t, err, fs.ErrPermission)
		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "/data/denied", ioErr.Path)
		assert.Zero(t, clock.Sleeps())
	})

	t.Run("Late visibility of a new directory is waited for", func(t *testing.T) {
		c, fd, mem, clock, _ := newMemConfirmer(t)
		require.NoError(t, mem.MkdirAll("/data", 0755))
		fd.invisibleAfterMkdir = 2

		require.NoError(t, c.EnsureDirectoryExists("/data/slow", 0))
		assert.Equal(t, 2, clock.Sleeps())
	})

	t.Run("Directory that never shows up times out", func(t *testing.T) {
		c, fd, mem, _, m := newMemConfirmer(t)
		require.NoError(t, mem.MkdirAll("/data", 0755))
		fd.invisibleAfterMkdir = 1000

		err := c.EnsureDirectoryExists("/data/never", 3*time.Second)

		var te *poll.TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "confirm mkdir", te.Op)
		assert.Equal(t, "/data/never", te.Path)
		assert.True(t, IsTimeout(err))
		assert.EqualValues(t, 1, m.Timeouts.Load())
	})
}

func TestRecreateDirectory(t *testing.T) {
	t.Run("Existing tree is replaced by an empty directory", func(t *testing.T) {
		c, root := newOsConfirmer(t)
		dir := filepath.Join(root, "work")
		writeFile(t, filepath.Join(dir, "old.txt"), "old")
		writeFile(t, filepath.Join(dir, "nested", "older.txt"), "older")

		require.NoError(t, c.RecreateDirectory(dir, 0))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Missing directory is created", func(t *testing.T) {
		c, root := newOsConfirmer(t)
		dir := filepath.Join(root, "fresh", "work")

		require.NoError(t, c.RecreateDirectory(dir, 0))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("File at the path is replaced by a directory", func(t *testing.T) {
		c, _, mem, _, m := newMemConfirmer(t)
		require.NoError(t, afero.WriteFile(mem, "/data/work", []byte("was a file"), 0644))

		require.NoError(t, c.RecreateDirectory("/data/work", 0))

		isDir, err := afero.IsDir(mem, "/data/work")
		require.NoError(t, err)
		assert.True(t, isDir)
		assert.EqualValues(t, 1, m.FilesDeleted.Load())
		assert.EqualValues(t, 1, m.DirsCreated.Load())
	})
}
