package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstitch_runs_total",
		Help: "Total number of stitch runs, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clipstitch_stage_duration_seconds",
		Help:    "Duration of stitch pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipstitch_frames_decoded_total",
		Help: "Total number of frames decoded for transition search",
	})

	SampleMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipstitch_sample_misses_total",
		Help: "Total number of candidate frames that could not be decoded during transition search",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipstitch_transitions_total",
		Help: "Total number of transitions computed, by confidence",
	}, []string{"confidence"})
)
