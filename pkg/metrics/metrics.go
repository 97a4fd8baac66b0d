package metrics

import (
	"sync/atomic"

	"github.com/paulschiretz/pgl-confirmfs/pkg/plog"
)

// Metrics defines the interface for collecting statistics about confirmed operations.
type Metrics interface {
	AddFilesCopied(n int64)
	AddFilesCreated(n int64)
	AddFilesDeleted(n int64)
	AddDirsCreated(n int64)
	AddDirsDeleted(n int64)
	AddPollRetries(n int64)
	AddTimeouts(n int64)
	Log()
}

// ConfirmMetrics holds the atomic counters. Counters are safe to share between
// concurrent callers; they are the only state a Confirmer carries besides its config.
type ConfirmMetrics struct {
	FilesCopied  atomic.Int64
	FilesCreated atomic.Int64
	FilesDeleted atomic.Int64
	DirsCreated  atomic.Int64
	DirsDeleted  atomic.Int64
	PollRetries  atomic.Int64
	Timeouts     atomic.Int64
}

func (m *ConfirmMetrics) AddFilesCopied(n int64)  { m.FilesCopied.Add(n) }
func (m *ConfirmMetrics) AddFilesCreated(n int64) { m.FilesCreated.Add(n) }
func (m *ConfirmMetrics) AddFilesDeleted(n int64) { m.FilesDeleted.Add(n) }
func (m *ConfirmMetrics) AddDirsCreated(n int64)  { m.DirsCreated.Add(n) }
func (m *ConfirmMetrics) AddDirsDeleted(n int64)  { m.DirsDeleted.Add(n) }
func (m *ConfirmMetrics) AddPollRetries(n int64)  { m.PollRetries.Add(n) }
func (m *ConfirmMetrics) AddTimeouts(n int64)     { m.Timeouts.Add(n) }

// Log prints a summary of the counters.
func (m *ConfirmMetrics) Log() {
	plog.Info("SUM",
		"filesCopied", m.FilesCopied.Load(),
		"filesCreated", m.FilesCreated.Load(),
		"filesDeleted", m.FilesDeleted.Load(),
		"dirsCreated", m.DirsCreated.Load(),
		"dirsDeleted", m.DirsDeleted.Load(),
		"pollRetries", m.PollRetries.Load(),
		"timeouts", m.Timeouts.Load(),
	)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
type NoopMetrics struct{}

func (m *NoopMetrics) AddFilesCopied(n int64)  {}
func (m *NoopMetrics) AddFilesCreated(n int64) {}
func (m *NoopMetrics) AddFilesDeleted(n int64) {}
func (m *NoopMetrics) AddDirsCreated(n int64)  {}
func (m *NoopMetrics) AddDirsDeleted(n int64)  {}
func (m *NoopMetrics) AddPollRetries(n int64)  {}
func (m *NoopMetrics) AddTimeouts(n int64)     {}
func (m *NoopMetrics) Log()                    {}

// Statically assert that our types implement the interface.
var _ Metrics = (*ConfirmMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
