// Package confirm turns filesystem mutations whose primitives may complete
// asynchronously into blocking operations that either return once the effect is
// independently observable, or fail within a bounded time.
//
// Every operation re-queries the filesystem after mutating it (through
// poll.Budget) instead of trusting the primitive's return value. Compound
// operations are built from the simple ones:
//
//   - Delete:  schedule the removal, then confirm the path is gone, both under one budget.
//   - EnsureDirectoryExists: create each missing path segment root to leaf and confirm it.
//   - Copy:    validate kinds, materialize directories shortest path first, copy each
//     file and confirm it with an exclusive open.
//   - Move:    Copy without overwrite, then Delete the source.
//   - CreateFile: write a temp file, Move it into place, then confirm it is listed.
//
// A Confirmer holds configuration only. It never caches filesystem state between
// or within calls, so concurrent callers on disjoint paths are independent.
package confirm

import (
	"errors"
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/metrics"
	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
	"github.com/paulschiretz/pgl-confirmfs/pkg/pool"
	"github.com/paulschiretz/pgl-confirmfs/pkg/util"
)

// Confirmer performs confirmed filesystem operations.
type Confirmer struct {
	cfg     Config
	driver  fsdriver.Driver
	metrics metrics.Metrics
	buffers *pool.FixedBufferPool
}

// New validates cfg and returns a Confirmer using it.
func New(cfg Config) (*Confirmer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Confirmer{
		cfg:     cfg,
		driver:  cfg.Driver,
		metrics: cfg.Metrics,
		buffers: pool.NewFixedBuffer(cfg.CopyBufferSize),
	}, nil
}

// Config returns the effective configuration.
func (c *Confirmer) Config() Config { return c.cfg }

// timeoutOr returns timeout, or the configured default for a zero value.
func (c *Confirmer) timeoutOr(timeout, def time.Duration) time.Duration {
	if timeout <= 0 {
		return def
	}
	return timeout
}

func (c *Confirmer) newBudget(timeout time.Duration) *poll.Budget {
	b := poll.NewBudget(timeout, c.cfg.PollInterval, c.cfg.Clock)
	b.OnRetry = func() { c.metrics.AddPollRetries(1) }
	return b
}

// until runs a polling phase and counts timeouts.
func (c *Confirmer) until(b *poll.Budget, op, path string, check poll.CheckFunc) error {
	err := b.Until(op, path, check)
	if errors.Is(err, poll.ErrTimeout) {
		c.metrics.AddTimeouts(1)
	}
	return err
}

// resolve turns a caller path into a PathHandle.
func resolve(op, path string) (string, error) {
	abs, err := util.AbsPath(path)
	if err != nil {
		return "", &ArgumentError{Op: op, Path: path, Reason: err.Error(), Err: err}
	}
	return abs, nil
}
