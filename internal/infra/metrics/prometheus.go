package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nsg_jobs_processed_total",
		Help: "Total number of analysis jobs processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nsg_stage_duration_seconds",
		Help:    "Duration of each analysis pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nsg_frames_sampled_total",
		Help: "Total number of frames sampled for detection across all jobs",
	})

	DetectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nsg_detections_total",
		Help: "Total number of detections kept after confidence filtering",
	})

	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nsg_alerts_total",
		Help: "Total number of alerts raised, by severity",
	}, []string{"severity"})

	DetectorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nsg_detector_failures_total",
		Help: "Total number of frames skipped because the detector failed",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nsg_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nsg_retry_total",
		Help: "Total number of job retries",
	}, []string{"attempt"})
)
