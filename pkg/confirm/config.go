package confirm

import (
	"fmt"
	"time"

	"github.com/paulschiretz/pgl-confirmfs/pkg/buildinfo"
	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
	"github.com/paulschiretz/pgl-confirmfs/pkg/metrics"
	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
	"github.com/paulschiretz/pgl-confirmfs/pkg/poll"
	"github.com/paulschiretz/pgl-confirmfs/pkg/pool"
)

const (
	// DefaultTimeout is used by every operation called with a zero timeout.
	DefaultTimeout = 20 * time.Second
	// DefaultRecreateTimeout is used by RecreateDirectory called with a zero timeout.
	DefaultRecreateTimeout = 30 * time.Second
)

// Config is threaded explicitly into a Confirmer; there is no package-level default state.
type Config struct {
	DefaultTimeout  time.Duration
	RecreateTimeout time.Duration
	PollInterval    time.Duration
	// CopyBufferSize is the size of the buffer used when streaming file digests.
	CopyBufferSize int64

	Driver  fsdriver.Driver
	Clock   poll.Clock
	Metrics metrics.Metrics
}

// NewDefault returns a Config for the host filesystem.
func NewDefault() Config {
	return Config{
		DefaultTimeout:  DefaultTimeout,
		RecreateTimeout: DefaultRecreateTimeout,
		PollInterval:    poll.DefaultInterval,
		CopyBufferSize:  pool.DefaultBufferSize,
		Driver:          fsdriver.NewOsDriver(),
		Clock:           poll.SystemClock(),
		Metrics:         &metrics.NoopMetrics{},
	}
}

// Validate fills unset collaborators with defaults and rejects nonsensical values.
func (c *Config) Validate() error {
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("default timeout cannot be negative: %s", c.DefaultTimeout)
	}
	if c.RecreateTimeout < 0 {
		return fmt.Errorf("recreate timeout cannot be negative: %s", c.RecreateTimeout)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval cannot be negative: %s", c.PollInterval)
	}
	if c.CopyBufferSize < 0 {
		return fmt.Errorf("copy buffer size cannot be negative: %d", c.CopyBufferSize)
	}

	if c.DefaultTimeout == 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.RecreateTimeout == 0 {
		c.RecreateTimeout = DefaultRecreateTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = poll.DefaultInterval
	}
	if c.CopyBufferSize == 0 {
		c.CopyBufferSize = pool.DefaultBufferSize
	}
	if c.Driver == nil {
		c.Driver = fsdriver.NewOsDriver()
	}
	if c.Clock == nil {
		c.Clock = poll.SystemClock()
	}
	if c.Metrics == nil {
		c.Metrics = &metrics.NoopMetrics{}
	}
	return nil
}

// LogSummary logs the effective settings.
func (c *Config) LogSummary() {
	plog.Info("Confirmation settings",
		"library", buildinfo.Name,
		"version", buildinfo.Version,
		"default_timeout", c.DefaultTimeout,
		"recreate_timeout", c.RecreateTimeout,
		"poll_interval", c.PollInterval,
		"copy_buffer_size", c.CopyBufferSize,
	)
}
