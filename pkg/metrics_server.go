package warmer

import (
	"fmt"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
)

// StartMetricsServer exposes the process's VictoriaMetrics registry over
// HTTP in Prometheus exposition format, adapted from the teacher's
// single-cache metrics endpoint to a process-wide /metrics handler any
// run's counters register into.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "warmer metrics available at /metrics")
	})

	Logger.Infof("starting metrics server at %s", addr)
	return http.ListenAndServe(addr, mux)
}
