package poll

import "time"

// Clock is the time source used by a Budget.
// Now must carry a monotonic reading so that Sub is immune to wall-clock steps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }
