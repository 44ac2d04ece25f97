package warmer

import (
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// runMetrics holds the VictoriaMetrics collectors for a single run,
// scoped by run id so concurrent invocations within one process (tests,
// a long-lived metrics server) don't collide.
type runMetrics struct {
	readsIssued   *metrics.Counter
	bytesCovered  *metrics.Counter
	warnings      *metrics.Counter
	phaseDuration *metrics.Histogram
	progressMicro atomic.Int64 // current phase progress ratio * 1e6
}

func newRunMetrics(runID string) *runMetrics {
	label := `run="` + runID + `"`
	rm := &runMetrics{
		readsIssued:   metrics.GetOrCreateCounter(`warmer_reads_issued_total{` + label + `}`),
		bytesCovered:  metrics.GetOrCreateCounter(`warmer_bytes_covered_total{` + label + `}`),
		warnings:      metrics.GetOrCreateCounter(`warmer_warnings_total{` + label + `}`),
		phaseDuration: metrics.GetOrCreateHistogram(`warmer_phase_duration_seconds{` + label + `}`),
	}
	metrics.GetOrCreateGauge(`warmer_phase_progress_ratio{`+label+`}`, func() float64 {
		return float64(rm.progressMicro.Load()) / 1e6
	})
	return rm
}

func (rm *runMetrics) setProgress(done, total uint64) {
	if total == 0 {
		rm.progressMicro.Store(1_000_000)
		return
	}
	ratio := float64(done) / float64(total)
	rm.progressMicro.Store(int64(ratio * 1e6))
}
