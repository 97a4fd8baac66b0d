package confirm

import (
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
)

// Delete removes a file or a directory tree and returns once the path is
// observed missing. A missing path is a no-op. A zero timeout uses the default.
func (c *Confirmer) Delete(path string, timeout time.Duration) error {
	abs, err := resolve("delete", path)
	if err != nil {
		return err
	}
	return c.delete(abs, c.timeoutOr(timeout, c.cfg.DefaultTimeout))
}

func (c *Confirmer) delete(abs string, timeout time.Duration) error {
	return c.deleteWithBudget(abs, c.newBudget(timeout))
}

// deleteWithBudget runs both deletion phases on b, so a caller that already
// spent part of its budget hands the remainder to the deletion.
func (c *Confirmer) deleteWithBudget(abs string, b *poll.Budget) error {
	kind, err := c.classify(abs)
	if err != nil {
		return err
	}
	if kind == fsdriver.Missing {
		return nil
	}

	plog.Notice("DELETE", "path", abs, "kind", kind)

	// Phase 1: keep asking until the primitive accepts the removal.
	err = c.until(b, "schedule delete", abs, func() (poll.Outcome, error) {
		var err error
		if kind == fsdriver.Directory {
			err = c.driver.RemoveAll(abs)
		} else {
			err = c.driver.Remove(abs)
		}
		switch {
		case err == nil, fsdriver.IsNotExist(err):
			return poll.Succeeded, nil
		case fsdriver.IsPermission(err):
			return poll.FailedFatal, newIOError("delete", abs, err)
		case fsdriver.IsInUse(err):
			plog.Debug("Path in use, delete not scheduled yet", "path", abs, "error", err)
		}
		return poll.PendingRetry, err
	})
	if err != nil {
		return err
	}

	// Phase 2: the rest of the same budget goes to observing the absence.
	err = c.until(b, "confirm delete", abs, c.kindIs(abs, fsdriver.Missing))
	if err != nil {
		return err
	}

	if kind == fsdriver.Directory {
		c.metrics.AddDirsDeleted(1)
	} else {
		c.metrics.AddFilesDeleted(1)
	}
	return nil
}

// kindIs builds a check that succeeds once abs classifies as want.
// Stat failures other than not-exist are treated as transient.
func (c *Confirmer) kindIs(abs string, want fsdriver.Kind) poll.CheckFunc {
	return func() (poll.Outcome, error) {
		kind, err := c.classify(abs)
		if err != nil {
			return poll.PendingRetry, err
		}
		if kind == want {
			return poll.Succeeded, nil
		}
		return poll.PendingRetry, nil
	}
}
