package connectivity

import (
	"log/slog"
	"sync/atomic"
)

// ProgressReporter receives progress from Build and search passes and can
// cancel them. It is only called from the goroutine running the engine
// operation, never from worker tasks.
type ProgressReporter interface {
	SetMaxProgress(n int)
	AdvanceProgress()
	SetCurrentProgress(fraction float64)
	IsCancelled() bool
	// KeepRefreshing lets the host service its UI. It returns false when
	// the user asked to stop.
	KeepRefreshing(wait bool) bool
}

// CommitSink is told about every item before propagation rewrites its net,
// so the host can snapshot prior state for undo.
type CommitSink interface {
	Modify(item BoardItem)
}

// LogReporter is a ProgressReporter that logs progress at debug level in
// tenths. Cancel stops the running operation at its next poll.
type LogReporter struct {
	Logger *slog.Logger
	Phase  string

	max       int
	current   int
	lastTenth int
	cancelled atomic.Bool
}

// NewLogReporter returns a reporter logging under the given phase name.
func NewLogReporter(logger *slog.Logger, phase string) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{Logger: logger, Phase: phase, lastTenth: -1}
}

func (r *LogReporter) SetMaxProgress(n int) {
	r.max = n
	r.current = 0
}

func (r *LogReporter) AdvanceProgress() {
	r.current++
	if r.max > 0 {
		r.SetCurrentProgress(float64(r.current) / float64(r.max))
	}
}

func (r *LogReporter) SetCurrentProgress(fraction float64) {
	tenth := int(fraction * 10)
	if tenth == r.lastTenth {
		return
	}
	r.lastTenth = tenth
	r.Logger.Debug("connectivity: progress",
		slog.String("phase", r.Phase),
		slog.Int("percent", tenth*10),
	)
}

func (r *LogReporter) IsCancelled() bool {
	return r.cancelled.Load()
}

func (r *LogReporter) KeepRefreshing(bool) bool {
	return !r.cancelled.Load()
}

// Cancel requests cancellation. Safe to call from any goroutine.
func (r *LogReporter) Cancel() {
	r.cancelled.Store(true)
}
