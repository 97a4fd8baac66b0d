package confirm

import (
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
)

// Move copies src to dst and then deletes src. It never overwrites: an
// existing destination is always rejected. A zero timeout uses the default.
func (c *Confirmer) Move(src, dst string, timeout time.Duration) error {
	absSrc, err := resolve("move", src)
	if err != nil {
		return err
	}
	absDst, err := resolve("move", dst)
	if err != nil {
		return err
	}
	return c.move(absSrc, absDst, c.timeoutOr(timeout, c.cfg.DefaultTimeout))
}

func (c *Confirmer) move(src, dst string, timeout time.Duration) error {
	plog.Notice("MOVE", "from", src, "to", dst)
	if err := c.copy(src, dst, false, timeout); err != nil {
		return err
	}
	return c.delete(src, timeout)
}
