package warmer

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Observer reports run progress. Progress lines are rate-limited to at
// most one per second so a fast-completing run over many small files
// doesn't flood stderr; debug events and the final summary bypass the
// limiter entirely.
type Observer struct {
	runID   string
	silent  bool
	debug   bool
	limiter *rate.Limiter
	metrics *runMetrics

	started time.Time
}

func NewObserver(silent, debug bool) *Observer {
	runID := uuid.NewString()
	return &Observer{
		runID:   runID,
		silent:  silent,
		debug:   debug,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		metrics: newRunMetrics(runID),
		started: time.Now(),
	}
}

// RunID returns the identifier this run's metrics are labeled with.
func (o *Observer) RunID() string { return o.runID }

// Progress reports done/total units of work (bytes or strides,
// depending on the caller). Subject to the one-per-second rate limit.
func (o *Observer) Progress(done, total uint64) {
	o.metrics.setProgress(done, total)
	if o.silent || !o.limiter.Allow() {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	fmt.Fprintf(os.Stderr, "\r[%s] %6.2f%% (%s / %s)", o.runID[:8], pct, humanize.Bytes(done), humanize.Bytes(total))
}

// ReadIssued records one completed I/O of n bytes.
func (o *Observer) ReadIssued(n int64) {
	o.metrics.readsIssued.Inc()
	o.metrics.bytesCovered.Add(int(n))
}

// Warning records a non-fatal warning, always logged regardless of
// silent mode.
func (o *Observer) Warning(format string, args ...interface{}) {
	o.metrics.warnings.Inc()
	Logger.Warnf(format, args...)
}

// Debugf emits a structured debug event gated on debug mode only, never
// on silent, since debug output is explicitly requested by the caller.
func (o *Observer) Debugf(format string, args ...interface{}) {
	if !o.debug {
		return
	}
	Logger.Debugf(format, args...)
}

// Finish records the phase's wall-clock duration and prints a final
// summary line, bypassing both the rate limiter and silent mode's
// suppression of intermediate progress (silent still allows the
// one-line final summary through to keep scripted callers informed).
func (o *Observer) Finish(state RunState, result Result) {
	o.metrics.phaseDuration.Update(result.Elapsed.Seconds())
	fmt.Fprintf(os.Stderr, "\n[%s] %s: %d files, %s covered, %d reads, %s, backend=%s\n",
		o.runID[:8], state, result.FilesVisited, humanize.Bytes(uint64(result.BytesCovered)),
		result.ReadsIssued, result.Elapsed.Round(time.Millisecond), result.BackendInUse)
}
