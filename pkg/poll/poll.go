// Package poll implements the retry-until-confirmed primitive used by every
// confirmed filesystem operation.
//
// A Budget bounds the total time one logical operation may spend waiting. It is
// driven by a check function that reports an Outcome for each attempt:
//
//   - Succeeded:    the effect is observable, stop immediately.
//   - FailedFatal:  retrying cannot help (permissions, structural conflicts), stop
//     immediately and return the check's error unchanged.
//   - PendingRetry: the effect is not visible yet, sleep one interval and try again.
//
// Elapsed time is accumulated from monotonic clock deltas measured on every
// iteration, so wall-clock adjustments and a slow check body are both accounted for.
// Once the budget is spent a final check runs without sleeping before the
// operation is declared timed out.
//
// A Budget may be shared by several sequential phases of one operation
// (e.g. "schedule delete" then "confirm delete"); each phase gets whatever the
// previous phases left over.
package poll

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
)

const (
	// DefaultInterval is the fixed delay between two checks.
	DefaultInterval = 2000 * time.Millisecond
	// MinTimeout is the smallest total budget. Shorter timeouts are clamped up to it.
	MinTimeout = 2 * time.Second
)

// Outcome is the result of a single check attempt.
type Outcome int

const (
	// PendingRetry means the effect is not observable yet.
	PendingRetry Outcome = iota
	// Succeeded means the effect is observable.
	Succeeded
	// FailedFatal means the operation cannot succeed by waiting.
	FailedFatal
)

var outcomeToString = map[Outcome]string{
	PendingRetry: "pending-retry",
	Succeeded:    "succeeded",
	FailedFatal:  "failed-fatal",
}

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	if str, ok := outcomeToString[o]; ok {
		return str
	}
	return fmt.Sprintf("unknown_outcome(%d)", o)
}

// CheckFunc performs one attempt. The error is the cause for PendingRetry
// (kept for diagnostics) and the returned error for FailedFatal. A FailedFatal
// outcome without an error is reported as ErrFatal.
type CheckFunc func() (Outcome, error)

var (
	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("timed out waiting for filesystem confirmation")
	// ErrFatal is returned for a FailedFatal outcome that carried no error.
	ErrFatal = errors.New("confirmation failed")
)

// TimeoutError is returned when a budget is exhausted while the check is still pending.
type TimeoutError struct {
	Op       string        // the phase that failed to confirm, e.g. "confirm delete"
	Path     string        // the path it was waiting on
	Budget   time.Duration // the total budget of the operation
	Attempts int           // number of checks performed in this phase
	Cause    error         // last transient cause observed, may be nil
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s %s: not confirmed within %s after %d attempts", e.Op, e.Path, e.Budget, e.Attempts)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.Cause)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// Is makes errors.Is(err, ErrTimeout) succeed for any TimeoutError.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Budget tracks the time spent by one logical operation.
type Budget struct {
	total    time.Duration
	interval time.Duration
	clock    Clock
	elapsed  time.Duration
	// OnRetry, if set, is called after every pending attempt that is followed by a sleep.
	OnRetry func()
}

// NewBudget creates a budget of max(timeout, MinTimeout) polled every interval.
// A nil clock uses the system clock; a non-positive interval uses DefaultInterval.
func NewBudget(timeout, interval time.Duration, clock Clock) *Budget {
	if timeout < MinTimeout {
		timeout = MinTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Budget{total: timeout, interval: interval, clock: clock}
}

// Total returns the clamped total budget.
func (b *Budget) Total() time.Duration { return b.total }

// Elapsed returns the time consumed so far by all phases.
func (b *Budget) Elapsed() time.Duration { return b.elapsed }

// Remaining returns the unspent part of the budget, never negative.
func (b *Budget) Remaining() time.Duration {
	if b.elapsed >= b.total {
		return 0
	}
	return b.total - b.elapsed
}

// Exhausted reports whether the budget has been fully consumed.
func (b *Budget) Exhausted() bool { return b.elapsed >= b.total }

// Until calls check until it succeeds, fails fatally, or the budget runs out.
// op and path only label log lines and the TimeoutError.
func (b *Budget) Until(op, path string, check CheckFunc) error {
	var lastCause error
	attempts := 0
	last := b.clock.Now()

	tick := func() {
		now := b.clock.Now()
		b.elapsed += now.Sub(last)
		last = now
	}

	for {
		tick()
		if b.Exhausted() {
			break
		}

		attempts++
		outcome, err := check()
		switch outcome {
		case Succeeded:
			return nil
		case FailedFatal:
			return fatal(op, path, err)
		}
		lastCause = err

		// The check itself may have taken long enough to use up the budget.
		tick()
		if b.Exhausted() {
			break
		}
		plog.Debug("Not confirmed yet, retrying", "op", op, "path", path, "attempt", attempts, "after", b.interval, "cause", err)
		if b.OnRetry != nil {
			b.OnRetry()
		}
		b.clock.Sleep(b.interval)
	}

	// Budget spent: one last look without sleeping.
	attempts++
	outcome, err := check()
	switch outcome {
	case Succeeded:
		return nil
	case FailedFatal:
		return fatal(op, path, err)
	}
	if err != nil {
		lastCause = err
	}

	plog.Warn("Timed out waiting for confirmation", "op", op, "path", path, "budget", b.total, "attempts", attempts)
	return &TimeoutError{
		Op:       op,
		Path:     path,
		Budget:   b.total,
		Attempts: attempts,
		Cause:    lastCause,
	}
}

func fatal(op, path string, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %w", op, path, ErrFatal)
}
