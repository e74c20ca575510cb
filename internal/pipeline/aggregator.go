package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/metrics"
	"go.uber.org/zap"
)

// Aggregator consumes a sampled frame stream, invokes the detector per
// frame, and collects the surviving detections and derived alerts into a
// session.
type Aggregator struct {
	detector  port.Detector
	threshold float64
	progress  chan<- Progress
	logger    *zap.Logger
}

// NewAggregator builds an aggregator. Detections with confidence below
// threshold are discarded (equal is kept). progress may be nil.
func NewAggregator(detector port.Detector, threshold float64, progress chan<- Progress, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		detector:  detector,
		threshold: threshold,
		progress:  progress,
		logger:    logger,
	}
}

// Process drains the sampled stream into a fresh session. The session is
// frozen only when the stream is fully exhausted; on error or cancellation
// the partial session is returned unfrozen alongside the error, with
// everything aggregated so far intact.
//
// A detector failure on a single frame is recoverable: it is logged,
// counted on the session, and the frame skipped.
func (a *Aggregator) Process(ctx context.Context, stream SampledStream) (*entity.Session, error) {
	sess := entity.NewSession()

	for {
		sampled, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			sess.Freeze()
			return sess, nil
		}
		if err != nil {
			return sess, err
		}

		sess.SampledFrames++
		metrics.FramesSampledTotal.Inc()

		detections, err := a.detector.Detect(ctx, sampled.Frame)
		if err != nil {
			if ctx.Err() != nil {
				return sess, ctx.Err()
			}
			sess.DetectorFailures++
			metrics.DetectorFailuresTotal.Inc()
			a.logger.Warn("detector failed on frame, skipping",
				zap.Int("frame_index", sampled.Frame.Index),
				zap.Float64("timestamp", sampled.Timestamp),
				zap.Error(err),
			)
			notify(a.progress, Progress{
				FrameIndex: sampled.Frame.Index,
				Timestamp:  sampled.Timestamp,
				Detections: len(sess.Detections),
			})
			continue
		}

		for _, d := range detections {
			if d.Confidence < a.threshold {
				continue
			}
			d.Timestamp = sampled.Timestamp
			before := len(sess.Alerts)
			sess.Append(d)
			metrics.DetectionsTotal.Inc()
			for _, alert := range sess.Alerts[before:] {
				metrics.AlertsTotal.WithLabelValues(string(alert.Severity)).Inc()
				a.logger.Info("alert raised",
					zap.String("severity", string(alert.Severity)),
					zap.String("message", alert.Message),
					zap.Float64("timestamp", alert.Timestamp),
				)
			}
		}

		notify(a.progress, Progress{
			FrameIndex: sampled.Frame.Index,
			Timestamp:  sampled.Timestamp,
			Detections: len(sess.Detections),
		})
	}
}
