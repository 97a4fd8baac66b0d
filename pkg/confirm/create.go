package confirm

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
)

// CreateFile creates an empty file. It fails if path already exists.
func (c *Confirmer) CreateFile(path string, timeout time.Duration) error {
	return c.createFile(path, nil, false, timeout)
}

// CreateFileAnew creates an empty file, replacing an existing file.
func (c *Confirmer) CreateFileAnew(path string, timeout time.Duration) error {
	return c.createFile(path, nil, true, timeout)
}

// CreateFileWithString creates a file holding content. It fails if path already exists.
func (c *Confirmer) CreateFileWithString(path, content string, timeout time.Duration) error {
	return c.createFile(path, []byte(content), false, timeout)
}

// CreateFileWithStringAnew creates a file holding content, replacing an existing file.
func (c *Confirmer) CreateFileWithStringAnew(path, content string, timeout time.Duration) error {
	return c.createFile(path, []byte(content), true, timeout)
}

// CreateFileWithBytes creates a file holding content. It fails if path already exists.
func (c *Confirmer) CreateFileWithBytes(path string, content []byte, timeout time.Duration) error {
	return c.createFile(path, content, false, timeout)
}

// CreateFileWithBytesAnew creates a file holding content, replacing an existing file.
func (c *Confirmer) CreateFileWithBytesAnew(path string, content []byte, timeout time.Duration) error {
	return c.createFile(path, content, true, timeout)
}

// createFile publishes content at path through a temp file, so the final path
// only ever shows a fully written file.
func (c *Confirmer) createFile(path string, content []byte, overwrite bool, timeout time.Duration) error {
	abs, err := resolve("create", path)
	if err != nil {
		return err
	}
	timeout = c.timeoutOr(timeout, c.cfg.DefaultTimeout)
	budget := c.newBudget(timeout)

	kind, err := c.classify(abs)
	if err != nil {
		return err
	}
	switch kind {
	case fsdriver.Directory:
		return newArgumentError("create", abs, "a directory exists at the path")
	case fsdriver.File:
		if !overwrite {
			return newArgumentError("create", abs, "file already exists")
		}
		if err := c.deleteWithBudget(abs, budget); err != nil {
			return err
		}
		// Whatever the deletion used is gone for the rest of the write.
		timeout = budget.Remaining()
	}

	parent := filepath.Dir(abs)
	if err := c.ensureDir(parent, timeout); err != nil {
		return err
	}

	temp, err := c.driver.CreateTemp(content)
	if err != nil {
		return newIOError("create", abs, err)
	}

	plog.Notice("CREATE", "path", abs, "bytes", len(content))
	if err := c.move(temp, abs, timeout); err != nil {
		// The move may have failed before it got to delete the temp file.
		_ = c.driver.Remove(temp)
		return err
	}

	names, err := c.driver.ReadDirNames(parent)
	if err != nil {
		return newIOError("list", parent, err)
	}
	base := filepath.Base(abs)
	if !slices.ContainsFunc(names, func(name string) bool { return strings.EqualFold(name, base) }) {
		return &PostConditionError{
			Op:   "create",
			Path: abs,
			Reason: fmt.Sprintf("%q is not listed in %s after a successful write; "+
				"the name is probably not valid on this filesystem", base, parent),
		}
	}

	c.metrics.AddFilesCreated(1)
	return nil
}
