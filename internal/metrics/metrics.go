// Package metrics declares the Prometheus collectors the pipeline
// updates as it runs: package-level CounterVec/HistogramVec/Gauge
// variables plus a single Register call.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PacketsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pbgp_packets_total",
		Help: "TCP segments seen by the pipeline, labeled by whether they passed the pre-filter.",
	}, []string{"result"})

	MessagesDecodedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pbgp_messages_decoded_total",
		Help: "BGP messages successfully decoded, labeled by message type.",
	}, []string{"type"})

	ParseErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pbgp_parse_errors_total",
		Help: "Parse failures, labeled by the pipeline stage that raised them.",
	}, []string{"stage"})

	FilterDropsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pbgp_filter_drops_total",
		Help: "Messages or frames dropped by a filter, labeled by filter stage.",
	}, []string{"stage"})

	SinkWriteFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pbgp_sink_write_failures_total",
		Help: "Sink write failures, labeled by sink type.",
	}, []string{"sink"})

	SinkWriteDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pbgp_sink_write_duration_seconds",
		Help:    "Latency of a single sink write.",
		Buckets: prometheus.DefBuckets,
	}, []string{"sink"})

	LastMessageTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pbgp_last_message_timestamp_seconds",
		Help: "Capture timestamp of the most recently decoded message.",
	})
)

var registerOnce sync.Once

// Register adds every collector above to the default registry. Safe to
// call more than once; only the first call registers.
func Register() {
	registerOnce.Do(register)
}

func register() {
	prometheus.MustRegister(
		PacketsTotal,
		MessagesDecodedTotal,
		ParseErrorsTotal,
		FilterDropsTotal,
		SinkWriteFailuresTotal,
		SinkWriteDuration,
		LastMessageTimestamp,
	)
}
