package platform

import (
	"sync"

	"clipper/internal/messages"
	"clipper/internal/runtime"
	"clipper/internal/terminal"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	CommandsTotal     *prometheus.CounterVec
	LinesTotal        *prometheus.CounterVec
	UIStreamsOpen     prometheus.Gauge

	metricsOnce sync.Once
	gaugeOnce   sync.Once
)

// InitMetrics registers core metrics collectors. Calling it again is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipper",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed, labeled by method, route and status.",
		}, []string{"method", "route", "status"})

		HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clipper",
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of request durations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipper",
			Name:      "terminal_commands_total",
			Help:      "Terminal commands applied, labeled by command name.",
		}, []string{"command"})

		LinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clipper",
			Name:      "terminal_lines_total",
			Help:      "Transcript lines produced by commands, labeled by kind.",
		}, []string{"kind"})

		UIStreamsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clipper",
			Name:      "ui_streams_open",
			Help:      "Browser SSE streams currently connected.",
		})

		prometheus.MustRegister(HTTPRequestsTotal, HTTPDuration, CommandsTotal, LinesTotal, UIStreamsOpen)
	})
}

// RegisterSessionGauge exports the number of live terminal sessions.
func RegisterSessionGauge(m *terminal.Manager) {
	gaugeOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "clipper",
			Name:      "terminal_sessions",
			Help:      "Terminal sessions held in memory.",
		}, func() float64 { return float64(m.Len()) }))
	})
}

// commandObserver counts applied commands and the lines they produced.
func commandObserver(known []string) runtime.Observer {
	return func(in messages.TerminalCommandMessage, res terminal.Result) {
		CommandsTotal.WithLabelValues(runtime.CommandName(in.Cmd, known)).Inc()
		for _, e := range res.Entries {
			LinesTotal.WithLabelValues(e.Kind.String()).Inc()
		}
	}
}
