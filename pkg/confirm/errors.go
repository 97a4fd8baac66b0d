package confirm

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
)

// Error categories returned by the confirmed operations.
var (
	// ErrInvalidArgument covers missing sources, kind mismatches, occupied
	// destinations without overwrite and malformed paths. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPostCondition means an operation reported success but its artifact
	// cannot be observed afterwards. Never retried.
	ErrPostCondition = errors.New("post-condition violated")
	// ErrTimeout matches every *poll.TimeoutError.
	ErrTimeout = poll.ErrTimeout
)

// ArgumentError describes why a call was rejected before touching the filesystem.
type ArgumentError struct {
	Op     string
	Path   string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

func newArgumentError(op, path, format string, args ...any) *ArgumentError {
	return &ArgumentError{Op: op, Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IOError wraps a failure of a driver primitive that is not worth retrying,
// permission failures in particular. errors.Is(err, fs.ErrPermission) works through it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// newIOError wraps err for op on path. A *fs.PathError naming the same path is
// reduced to its cause so the path is not repeated in the message.
func newIOError(op, path string, err error) *IOError {
	if pe, ok := err.(*fs.PathError); ok && pe.Path == path {
		err = pe.Err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// PostConditionError reports an artifact missing after a successful operation.
type PostConditionError struct {
	Op     string
	Path   string
	Reason string
}

func (e *PostConditionError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Reason)
}

func (e *PostConditionError) Is(target error) bool { return target == ErrPostCondition }

// IsInvalidArgument reports whether err is an Invalid-argument failure.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }
