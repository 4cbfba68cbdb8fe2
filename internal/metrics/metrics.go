// Package metrics holds the prometheus collectors shared by ingestion,
// retrieval and the web UI.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all docrag collectors. Each instance owns its registry so
// tests and multiple servers in one process do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsIngested  *prometheus.CounterVec
	IngestFailures     *prometheus.CounterVec
	LLMRequests        *prometheus.CounterVec
	LLMDuration        *prometheus.HistogramVec
	RankDuration       prometheus.Histogram
	RankedDocuments    prometheus.Histogram
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		DocumentsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrag_documents_ingested_total",
				Help: "Documents stored by the ingestion pipeline.",
			},
			[]string{"source"},
		),
		IngestFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrag_ingest_failures_total",
				Help: "Ingestion runs aborted, by failing stage.",
			},
			[]string{"source", "stage"}, // stage: fetch, extract, keywords, store
		),
		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docrag_llm_requests_total",
				Help: "Completion requests sent to the language model.",
			},
			[]string{"purpose", "status"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docrag_llm_request_duration_seconds",
				Help:    "Duration of completion requests.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"purpose"},
		),
		RankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docrag_rank_duration_seconds",
				Help:    "Duration of document ranking, keyword extraction included.",
				Buckets: prometheus.DefBuckets,
			},
		),
		RankedDocuments: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docrag_ranked_documents",
				Help:    "Documents returned per ranking.",
				Buckets: []float64{0, 1, 2, 4, 8, 12, 16, 20},
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	m.Registry.MustRegister(
		m.DocumentsIngested,
		m.IngestFailures,
		m.LLMRequests,
		m.LLMDuration,
		m.RankDuration,
		m.RankedDocuments,
		m.HTTPRequestsTotal,
		m.HTTPRequestSeconds,
	)
	return m
}
