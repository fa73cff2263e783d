package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsagcd_batches_total",
			Help: "The total number of batch launches, by outcome",
		},
		[]string{"algorithm", "scheme", "status"},
	)
	unitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsagcd_batch_units_total",
			Help: "The total number of GCD units computed by batch launches",
		},
		[]string{"algorithm", "scheme"},
	)
	kernelIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsagcd_kernel_iterations_total",
			Help: "The total number of reduction steps executed by kernels",
		},
		[]string{"algorithm"},
	)
	batchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsagcd_batch_duration_seconds",
			Help:    "The duration of batch launches in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		},
		[]string{"algorithm", "scheme"},
	)
	lockstepEfficiency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsagcd_lockstep_efficiency",
			Help:    "Useful lane steps divided by lockstep steps, per group",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"algorithm"},
	)
)
