package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/metrics"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/pipeline"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnalyzeVideoUseCase drives one analysis job end to end: download the
// video, sample frames through the detector, export the report, and keep
// job state and status messages current.
type AnalyzeVideoUseCase struct {
	repo       port.JobRepository
	storage    port.VideoStorage
	opener     port.VideoOpener
	detector   port.Detector
	exporter   *pipeline.Exporter
	publisher  port.StatusPublisher
	dlq        port.DLQPublisher
	heartbeats port.HeartbeatPublisher
	notifier   port.FailureNotifier
	logger     *zap.Logger
	cfg        AnalyzeVideoConfig
}

type AnalyzeVideoConfig struct {
	TempDir string
	// MaxRetries bounds attempts per job before the DLQ.
	MaxRetries int
	// DefaultFrameSkip and DefaultThreshold apply when the request message
	// does not carry overrides.
	DefaultFrameSkip int
	DefaultThreshold float64
}

func NewAnalyzeVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	opener port.VideoOpener,
	detector port.Detector,
	exporter *pipeline.Exporter,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	heartbeats port.HeartbeatPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeVideoConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		repo:       repo,
		storage:    storage,
		opener:     opener,
		detector:   detector,
		exporter:   exporter,
		publisher:  publisher,
		dlq:        dlq,
		heartbeats: heartbeats,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.AnalysisRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, uc.cfg.MaxRetries)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *AnalyzeVideoUseCase) runPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.cfg.TempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from object storage
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Open the source; probing rejects unsupported containers here.
	ctx3, spanOpen := tracer.Start(ctx, "open_source")
	src, err := uc.opener.Open(ctx3, videoPath)
	if err != nil {
		spanOpen.End()
		log.Error("failed to open video source", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_source: "+err.Error(), log)
	}
	spanOpen.End()
	defer src.Close()
	meta := src.Metadata()

	// Sample and aggregate
	anStart := time.Now()
	ctx4, spanAn := tracer.Start(ctx, "analyze")
	skip := msg.FrameSkip
	if skip < 1 {
		skip = uc.cfg.DefaultFrameSkip
	}
	threshold := uc.cfg.DefaultThreshold
	if msg.ConfidenceThreshold != nil {
		threshold = *msg.ConfidenceThreshold
	}

	sampler, err := pipeline.NewSampler(src, skip)
	if err != nil {
		spanAn.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "sampler: "+err.Error(), log)
	}

	progressCh, stopProgress := uc.startProgressForwarder(ctx, job.ID, log)
	agg := pipeline.NewAggregator(uc.detector, threshold, progressCh, log)
	sess, err := agg.Process(ctx4, sampler)
	stopProgress()
	if err != nil {
		spanAn.End()
		log.Error("analysis failed", zap.Error(err),
			zap.Int("partial_detections", len(sess.Detections)))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "analyze: "+err.Error(), log)
	}
	spanAn.End()
	metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(anStart).Seconds())

	// Export and upload the report
	exStart := time.Now()
	ctx5, spanEx := tracer.Start(ctx, "export_report")
	reportData, err := uc.exporter.ExportJSON(sess)
	if err != nil {
		spanEx.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "export_report: "+err.Error(), log)
	}
	reportKey := fmt.Sprintf("%s/report_%s.json", msg.UserID, job.ID.String())
	if err := uc.storage.UploadReport(ctx5, reportKey, reportData); err != nil {
		spanEx.End()
		log.Error("report upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_report: "+err.Error(), log)
	}
	spanEx.End()
	metrics.StageDuration.WithLabelValues("export").Observe(time.Since(exStart).Seconds())

	// Mark completed
	job.MarkCompleted(reportKey, sess, meta.Duration)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("sampled_frames", sess.SampledFrames),
		zap.Int("detections", len(sess.Detections)),
		zap.Int("alerts", len(sess.Alerts)),
		zap.Int("detector_failures", sess.DetectorFailures),
		zap.Float64("duration_secs", meta.Duration),
		zap.String("report_key", reportKey),
	)

	return nil
}

// startProgressForwarder bridges the pipeline's drop-if-full progress
// channel to the heartbeat topic. Returns a nil channel when heartbeats are
// not configured; stop must be called once the pipeline is done.
func (uc *AnalyzeVideoUseCase) startProgressForwarder(ctx context.Context, jobID uuid.UUID, log *zap.Logger) (chan pipeline.Progress, func()) {
	if uc.heartbeats == nil {
		return nil, func() {}
	}

	ch := make(chan pipeline.Progress, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for p := range ch {
			hb := entity.Heartbeat{
				JobID:      jobID,
				FrameIndex: p.FrameIndex,
				Timestamp:  p.Timestamp,
				SentAt:     time.Now().UTC(),
			}
			if err := uc.heartbeats.PublishHeartbeat(ctx, hb); err != nil {
				log.Warn("heartbeat publish failed", zap.Error(err))
			}
		}
	}()

	return ch, func() {
		close(ch)
		wg.Wait()
	}
}

func (uc *AnalyzeVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *AnalyzeVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *AnalyzeVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:          job.ID,
		UserID:         job.UserID,
		Status:         job.Status,
		VideoKey:       job.VideoKey,
		ReportKey:      job.ReportKey,
		DetectionCount: job.DetectionCount,
		AlertCount:     job.AlertCount,
		Duration:       job.VideoDuration,
		ErrorMessage:   job.ErrorMessage,
		Attempt:        job.Attempt,
		MaxAttempts:    job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
