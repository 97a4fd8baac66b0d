// Package fsdriver is the filesystem capability surface consumed by the
// confirmation layer. Its primitives may return before their effect is
// visible; callers are expected to confirm every mutation by re-querying.
//
// AferoDriver implements Driver on top of any afero.Fs. Backed by
// afero.NewOsFs it talks to the host filesystem and uses OS file locks for
// exclusive-open checks; backed by afero.NewMemMapFs it serves tests.
package fsdriver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/paulschiretz/pgl-confirmfs/pkg/pool"
	"github.com/paulschiretz/pgl-confirmfs/pkg/util"
)

// Kind classifies what currently occupies a path.
type Kind int

const (
	// Missing means nothing exists at the path.
	Missing Kind = iota
	// File means a non-directory entry exists at the path.
	File
	// Directory means a directory exists at the path.
	Directory
)

var kindToString = map[Kind]string{Missing: "missing", File: "file", Directory: "directory"}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if str, ok := kindToString[k]; ok {
		return str
	}
	return fmt.Sprintf("unknown_kind(%d)", k)
}

// Driver is the set of raw filesystem primitives. None of them confirm anything.
type Driver interface {
	// Stat reports the kind of entry at path. A missing entry, including one
	// below an existing file, is (Missing, nil).
	Stat(path string) (Kind, error)
	// Mkdir creates a single directory; the parent must exist.
	Mkdir(path string) error
	// Remove deletes a file or an empty directory.
	Remove(path string) error
	// RemoveAll deletes path and all descendants.
	RemoveAll(path string) error
	// CopyFile copies the bytes and permission bits of src to dst, replacing dst.
	CopyFile(src, dst string) error
	// CreateTemp writes content to a new file in the platform temp area and returns its path.
	CreateTemp(content []byte) (string, error)
	// OpenExclusive opens path read-write with an exclusive lock.
	OpenExclusive(path string) (io.Closer, error)
	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)
	// ReadDirNames lists the entry names of a directory, sorted.
	ReadDirNames(path string) ([]string, error)
	// Walk visits root and all descendants in lexical order.
	Walk(root string, fn filepath.WalkFunc) error
}

// TempPattern is the name pattern of temp files created by CreateTemp.
const TempPattern = "pgl-confirmfs-*.tmp"

// AferoDriver implements Driver over an afero.Fs.
type AferoDriver struct {
	fs      afero.Fs
	tempDir string
	buffers *pool.FixedBufferPool
}

// NewOsDriver returns a driver for the host filesystem.
func NewOsDriver() *AferoDriver {
	return NewAferoDriver(afero.NewOsFs(), "", pool.DefaultBufferSize)
}

// NewAferoDriver returns a driver over fsys. An empty tempDir uses the
// platform temp directory.
func NewAferoDriver(fsys afero.Fs, tempDir string, bufferSize int64) *AferoDriver {
	return &AferoDriver{
		fs:      fsys,
		tempDir: tempDir,
		buffers: pool.NewFixedBuffer(bufferSize),
	}
}

// Fs exposes the underlying afero filesystem.
func (d *AferoDriver) Fs() afero.Fs { return d.fs }

func (d *AferoDriver) Stat(path string) (Kind, error) {
	info, err := d.fs.Stat(path)
	if IsNotDir(err) {
		// An ancestor is a file, so nothing can exist below it.
		return Missing, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		// A dangling symlink still occupies the name.
		if _, lerr := lstatIfPossible(d.fs, path); lerr == nil {
			return File, nil
		}
		return Missing, nil
	}
	if err != nil {
		return Missing, err
	}
	if info.IsDir() {
		return Directory, nil
	}
	return File, nil
}

func (d *AferoDriver) Mkdir(path string) error {
	return d.fs.Mkdir(path, util.UserWritableDirPerms)
}

func (d *AferoDriver) Remove(path string) error {
	return d.fs.Remove(path)
}

func (d *AferoDriver) RemoveAll(path string) error {
	return d.fs.RemoveAll(path)
}

func (d *AferoDriver) CopyFile(src, dst string) (err error) {
	in, err := d.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", src, err)
	}
	// The copy must stay deletable by whoever created it, even if the source was read-only.
	perm := util.WithUserWritePermission(info.Mode().Perm())

	out, err := d.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to open destination file %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file %s: %w", dst, cerr)
		}
	}()

	bufPtr := d.buffers.Get()
	defer d.buffers.Put(bufPtr)

	if _, err := io.CopyBuffer(out, in, *bufPtr); err != nil {
		return fmt.Errorf("failed to copy content from %s to %s: %w", src, dst, err)
	}
	if err := d.fs.Chmod(dst, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	return nil
}

func (d *AferoDriver) CreateTemp(content []byte) (string, error) {
	out, err := afero.TempFile(d.fs, d.tempDir, TempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := out.Name()

	if _, err := out.Write(content); err != nil {
		out.Close()
		_ = d.fs.Remove(tempPath)
		return "", fmt.Errorf("failed to write temporary file %s: %w", tempPath, err)
	}
	if err := out.Close(); err != nil {
		_ = d.fs.Remove(tempPath)
		return "", fmt.Errorf("failed to close temporary file %s: %w", tempPath, err)
	}
	return tempPath, nil
}

func (d *AferoDriver) OpenExclusive(path string) (io.Closer, error) {
	f, err := d.fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	// Only real OS files can carry an OS lock.
	osFile, ok := f.(*os.File)
	if !ok {
		return f, nil
	}
	if err := lockExclusive(osFile); err != nil {
		osFile.Close()
		return nil, &fs.PathError{Op: "lock", Path: path, Err: err}
	}
	return &lockedFile{File: osFile}, nil
}

func (d *AferoDriver) Open(path string) (io.ReadCloser, error) {
	return d.fs.Open(path)
}

func (d *AferoDriver) ReadDirNames(path string) ([]string, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (d *AferoDriver) Walk(root string, fn filepath.WalkFunc) error {
	return afero.Walk(d.fs, root, fn)
}

// lockedFile releases the OS lock before closing the descriptor.
type lockedFile struct {
	*os.File
}

func (l *lockedFile) Close() error {
	uerr := unlock(l.File)
	cerr := l.File.Close()
	if cerr != nil {
		return cerr
	}
	return uerr
}

func lstatIfPossible(fsys afero.Fs, path string) (os.FileInfo, error) {
	if lfs, ok := fsys.(afero.Lstater); ok {
		info, _, err := lfs.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

// Statically assert that AferoDriver implements the interface.
var _ Driver = (*AferoDriver)(nil)
