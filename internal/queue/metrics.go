package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "judge_queue_depth",
		Help: "Number of submissions waiting to be claimed by a worker",
	})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_submissions_total",
		Help: "Total judged submissions by terminal verdict",
	}, []string{"verdict"})

	judgeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "judge_submission_duration_seconds",
		Help:    "End-to-end judging duration per submission",
		Buckets: prometheus.DefBuckets,
	})
)
