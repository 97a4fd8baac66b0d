package fsdriver

import (
	"errors"
	"io/fs"
)

// IsPermission reports whether err is an access-control failure. Waiting
// cannot resolve these, so callers must not retry them.
func IsPermission(err error) bool {
	return err != nil && errors.Is(err, fs.ErrPermission)
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrNotExist)
}

// IsExist reports whether err means the path already exists.
func IsExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrExist)
}

// IsInUse reports whether err means another process still holds the path.
// Only used to label transient failures in logs; every non-permission
// failure is retried regardless.
func IsInUse(err error) bool {
	return err != nil && isInUse(err)
}

// IsNotDir reports whether err means a path component that should be a
// directory is a file, e.g. stat of "file.txt/child".
func IsNotDir(err error) bool {
	return err != nil && isNotDir(err)
}
