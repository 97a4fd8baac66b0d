package confirm

import (
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
	"github.com/paulschiretz/pgl-confirmfs/pkg/util"
)

// Copy replicates a file or a directory tree at dst and returns once every
// copied file is confirmed. If dst exists with the same kind as src it is
// deleted first when overwrite is set, otherwise the call is rejected.
// A zero timeout uses the default.
func (c *Confirmer) Copy(src, dst string, overwrite bool, timeout time.Duration) error {
	absSrc, err := resolve("copy", src)
	if err != nil {
		return err
	}
	absDst, err := resolve("copy", dst)
	if err != nil {
		return err
	}
	return c.copy(absSrc, absDst, overwrite, c.timeoutOr(timeout, c.cfg.DefaultTimeout))
}

func (c *Confirmer) copy(src, dst string, overwrite bool, timeout time.Duration) error {
	if util.SamePath(src, dst) {
		return newArgumentError("copy", src, "source and destination are the same path")
	}

	srcKind, err := c.classify(src)
	if err != nil {
		return err
	}
	if srcKind == fsdriver.Missing {
		return newArgumentError("copy", src, "source does not exist")
	}
	if srcKind == fsdriver.Directory && util.IsSubPath(src, dst) {
		return newArgumentError("copy", src, "destination %s lies inside the source directory", dst)
	}
	if util.IsSubPath(dst, src) {
		// Replacing dst would delete the source along with it.
		return newArgumentError("copy", src, "destination %s is an ancestor of the source", dst)
	}

	dstKind, err := c.classify(dst)
	if err != nil {
		return err
	}
	if dstKind != fsdriver.Missing {
		if dstKind != srcKind {
			return newArgumentError("copy", dst, "cannot copy a %s over an existing %s", srcKind, dstKind)
		}
		if !overwrite {
			return newArgumentError("copy", dst, "destination already exists")
		}
		if err := c.delete(dst, timeout); err != nil {
			return err
		}
	}

	if srcKind == fsdriver.File {
		return c.copyFileConfirmed(src, dst, timeout)
	}
	return c.copyDirConfirmed(src, dst, timeout)
}

// copyFileConfirmed copies one file and waits until an exclusive open of the
// destination succeeds, i.e. nobody (the OS included) is still writing it.
func (c *Confirmer) copyFileConfirmed(src, dst string, timeout time.Duration) error {
	if err := c.ensureDir(filepath.Dir(dst), timeout); err != nil {
		return err
	}

	plog.Notice("COPY", "from", src, "to", dst)
	if err := c.driver.CopyFile(src, dst); err != nil {
		return newIOError("copy", dst, err)
	}

	err := c.until(c.newBudget(timeout), "confirm copy", dst, func() (poll.Outcome, error) {
		h, err := c.driver.OpenExclusive(dst)
		if err != nil {
			return poll.PendingRetry, err
		}
		if err := h.Close(); err != nil {
			return poll.PendingRetry, err
		}
		return poll.Succeeded, nil
	})
	if err != nil {
		return err
	}
	c.metrics.AddFilesCopied(1)
	return nil
}

func (c *Confirmer) copyDirConfirmed(src, dst string, timeout time.Duration) error {
	if err := c.ensureDir(dst, timeout); err != nil {
		return err
	}

	var dirs, files []string
	err := c.driver.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		if info.IsDir() {
			dirs = append(dirs, path)
		} else {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return newIOError("enumerate", src, err)
	}

	// A parent path is always shorter than its children, so this order
	// materializes parents first regardless of how the walk visited them.
	slices.SortStableFunc(dirs, func(a, b string) int {
		return len(a) - len(b)
	})

	for _, dir := range dirs {
		if err := c.ensureDir(util.Rebase(dir, src, dst), timeout); err != nil {
			return err
		}
	}
	for _, file := range files {
		if err := c.copyFileConfirmed(file, util.Rebase(file, src, dst), timeout); err != nil {
			return err
		}
	}
	return nil
}
