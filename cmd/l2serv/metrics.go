package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters and histograms for archive decoding.
type Metrics struct {
	ArchivesDecoded *prometheus.CounterVec // labels: outcome={complete,truncated,error}
	FetchDuration   prometheus.Histogram
	DecodeDuration  prometheus.Histogram
	ArchiveBytes    prometheus.Histogram
	ChunksPerVolume prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ArchivesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "l2serv",
			Name:      "archives_decoded_total",
			Help:      "Archives and chunks decoded, by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "l2serv",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent reading an archive or chunk from the store.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "l2serv",
			Name:      "decode_duration_seconds",
			Help:      "Time spent decompressing and decoding an archive or chunk.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		ArchiveBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "l2serv",
			Name:      "archive_bytes",
			Help:      "Size of the archives and chunks read from the store.",
			Buckets:   prometheus.ExponentialBuckets(1<<12, 4, 8),
		}),
		ChunksPerVolume: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "l2serv",
			Name:      "chunks_per_volume",
			Help:      "Number of chunks combined into one volume.",
			Buckets:   []float64{1, 10, 25, 50, 100, 200},
		}),
	}

	reg.MustRegister(
		m.ArchivesDecoded,
		m.FetchDuration,
		m.DecodeDuration,
		m.ArchiveBytes,
		m.ChunksPerVolume,
	)

	return m
}

func (m *Metrics) observeDecode(truncated bool, err error) {
	switch {
	case err != nil:
		m.ArchivesDecoded.WithLabelValues("error").Inc()
	case truncated:
		m.ArchivesDecoded.WithLabelValues("truncated").Inc()
	default:
		m.ArchivesDecoded.WithLabelValues("complete").Inc()
	}
}
