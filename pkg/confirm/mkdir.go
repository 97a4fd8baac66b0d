package confirm

import (
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
	"github.com/paulschiretz/pgl-confirmfs/pkg/util"
)

// EnsureDirectoryExists creates path and every missing ancestor, confirming
// each one before moving to the next. A zero timeout uses the default.
func (c *Confirmer) EnsureDirectoryExists(path string, timeout time.Duration) error {
	abs, err := resolve("mkdir", path)
	if err != nil {
		return err
	}
	return c.ensureDir(abs, c.timeoutOr(timeout, c.cfg.DefaultTimeout))
}

// RecreateDirectory deletes path if anything exists there and creates it
// again as an empty directory. A zero timeout uses the recreate default.
func (c *Confirmer) RecreateDirectory(path string, timeout time.Duration) error {
	abs, err := resolve("recreate", path)
	if err != nil {
		return err
	}
	timeout = c.timeoutOr(timeout, c.cfg.RecreateTimeout)
	if err := c.delete(abs, timeout); err != nil {
		return err
	}
	return c.ensureDir(abs, timeout)
}

func (c *Confirmer) ensureDir(abs string, timeout time.Duration) error {
	for _, segment := range util.PathSegments(abs) {
		if util.IsRoot(segment) {
			continue
		}

		kind, err := c.classify(segment)
		if err != nil {
			return err
		}
		switch kind {
		case fsdriver.Directory:
			continue
		case fsdriver.File:
			return newArgumentError("mkdir", abs, "path segment %s is an existing file", segment)
		}

		plog.Notice("MKDIR", "path", segment)
		// Creation failures are not retried; only visibility is waited for.
		if err := c.driver.Mkdir(segment); err != nil && !fsdriver.IsExist(err) {
			return newIOError("mkdir", segment, err)
		}

		// Each segment gets a fresh budget of the full timeout.
		err = c.until(c.newBudget(timeout), "confirm mkdir", segment, func() (poll.Outcome, error) {
			kind, err := c.classify(segment)
			switch {
			case err != nil:
				return poll.PendingRetry, err
			case kind == fsdriver.Directory:
				return poll.Succeeded, nil
			case kind == fsdriver.File:
				return poll.FailedFatal, newArgumentError("mkdir", abs, "path segment %s became a file", segment)
			}
			return poll.PendingRetry, nil
		})
		if err != nil {
			return err
		}
		c.metrics.AddDirsCreated(1)
	}
	return nil
}
