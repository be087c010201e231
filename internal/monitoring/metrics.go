// Package monitoring exposes simulation counters over Prometheus.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Total number of completed backtest runs",
		},
		[]string{"strategy"},
	)

	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_trades_total",
			Help: "Total number of simulated trades",
		},
		[]string{"strategy", "side"},
	)

	droppedSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_dropped_signals_total",
			Help: "Non-HOLD signals dropped without a trade",
		},
		[]string{"strategy", "reason"},
	)

	finalEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backtest_final_equity",
			Help: "Final account value of the most recent run",
		},
		[]string{"strategy"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtest_run_duration_seconds",
			Help:    "Wall-clock duration of backtest runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(droppedSignalsTotal)
	prometheus.MustRegister(finalEquity)
	prometheus.MustRegister(runDuration)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRun records the completion of a backtest run.
func RecordRun(strategy string, equity float64, seconds float64) {
	runsTotal.WithLabelValues(strategy).Inc()
	finalEquity.WithLabelValues(strategy).Set(equity)
	runDuration.WithLabelValues(strategy).Observe(seconds)
}

// RecordTrade records one simulated trade.
func RecordTrade(strategy, side string) {
	tradesTotal.WithLabelValues(strategy, side).Inc()
}

// RecordDroppedSignals adds the dropped-signal counts of a run.
func RecordDroppedSignals(strategy string, byReason map[string]int) {
	for reason, n := range byReason {
		droppedSignalsTotal.WithLabelValues(strategy, reason).Add(float64(n))
	}
}
