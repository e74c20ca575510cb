package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/port"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/config"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/detector"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/email"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/ffmpeg"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/kafka"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/metrics"
	miniostorage "github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/minio"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/postgres"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/rabbitmq"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/infra/tracing"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/pipeline"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/usecase"
	"github.com/lochan-kannan-293/nsg-surveillance-system/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting nsg-analysis-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	// Migrations
	err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	if err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Object storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		UploadBucket: cfg.MinIOUploadBucket,
		ReportBucket: cfg.MinIOReportBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Heartbeats are optional; without brokers the pipeline just skips them.
	var heartbeats port.HeartbeatPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewHeartbeatProducer(cfg.KafkaBrokers, cfg.KafkaHeartbeatTopic)
		if err != nil {
			log.Warn("kafka unavailable, continuing without heartbeats", zap.Error(err))
		} else {
			defer producer.Close()
			heartbeats = producer
		}
	}

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	opener := ffmpeg.NewOpener(log)
	detectClient := detector.NewClient(cfg.DetectionEndpoint, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)
	exporter := pipeline.NewExporter()

	// Use case
	uc := usecase.NewAnalyzeVideoUseCase(
		repo, storage, opener, detectClient, exporter,
		statusPub, dlqPub, heartbeats, notifier,
		log,
		usecase.AnalyzeVideoConfig{
			TempDir:          cfg.TempDir,
			MaxRetries:       cfg.MaxRetries,
			DefaultFrameSkip: cfg.FrameSkip,
			DefaultThreshold: cfg.ConfidenceThreshold,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQRequestQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("nsg-analysis-worker started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("nsg-analysis-worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
