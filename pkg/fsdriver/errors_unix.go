//go:build !windows

package fsdriver

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isInUse(err error) bool {
	return errors.Is(err, unix.EBUSY) ||
		errors.Is(err, unix.ETXTBSY) ||
		errors.Is(err, unix.EWOULDBLOCK)
}

func isNotDir(err error) bool {
	return errors.Is(err, unix.ENOTDIR)
}
