// Package metrics exposes the Prometheus collectors for the outline pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outliner",
			Name:      "documents_processed_total",
			Help:      "Documents processed by result (success, no_text, unsupported, error)",
		},
		[]string{"result"},
	)

	headingsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outliner",
			Name:      "headings_detected_total",
			Help:      "Outline entries produced, by level",
		},
		[]string{"level"},
	)

	extractDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "outliner",
			Name:      "extract_duration_seconds",
			Help:      "End-to-end duration per document, by pipeline stage",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	conversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outliner",
			Name:      "conversions_total",
			Help:      "LibreOffice conversions by result",
		},
		[]string{"result"},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "outliner",
			Name:      "queue_depth",
			Help:      "Queue depth gauges for stream and dlq",
		},
		[]string{"type"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(
		documentsProcessed,
		headingsDetected,
		extractDuration,
		conversionsTotal,
		queueDepth,
	)
}

// Handler returns the http.Handler for /metrics.
func Handler() http.Handler { return promhttp.Handler() }

func IncProcessed(result string) { documentsProcessed.WithLabelValues(result).Inc() }

func IncHeading(level string) { headingsDetected.WithLabelValues(level).Inc() }

func ObserveStage(stage string, dur time.Duration) {
	extractDuration.WithLabelValues(stage).Observe(dur.Seconds())
}

func IncConversion(result string) { conversionsTotal.WithLabelValues(result).Inc() }

func SetQueueDepth(kind string, v int64) { queueDepth.WithLabelValues(kind).Set(float64(v)) }
