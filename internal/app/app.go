package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/config"
	kafkactrl "github.com/andreyxaxa/Photo-Ingest/internal/controller/kafka"
	"github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi"
	v1 "github.com/andreyxaxa/Photo-Ingest/internal/controller/restapi/v1"
	reconcileworker "github.com/andreyxaxa/Photo-Ingest/internal/controller/worker/reconcile"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/extractor"
	infrakafka "github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/metrics"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/thumbnail"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/ingest"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/query"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/reconcile"
	thumbnailuc "github.com/andreyxaxa/Photo-Ingest/internal/usecase/thumbnail"
	"github.com/andreyxaxa/Photo-Ingest/pkg/httpserver"
	"github.com/andreyxaxa/Photo-Ingest/pkg/kafka/consumer"
	"github.com/andreyxaxa/Photo-Ingest/pkg/kafka/producer"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// multipartOverhead is the room left above the upload ceiling for form fields
// and boundaries.
const multipartOverhead = 1 << 20

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	loc, err := time.LoadLocation(cfg.Upload.TimeZone)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - time.LoadLocation: %w", err))
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - metrics.New: %w", err))
	}

	// Repository
	blob, err := NewBlobStorage(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - NewBlobStorage: %w", err))
	}
	objects := objectstore.New(blob, cfg.ObjectStore.PublicURL, objectstore.Location(loc))

	store, closeStore, err := NewRecordStore(ctx, cfg, l)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - NewRecordStore: %w", err))
	}
	defer closeStore()

	// Use-Case
	ingestOpts := []ingest.Option{
		ingest.Metrics(m),
		ingest.UploadSource(cfg.Upload.Source),
	}

	// Kafka Producer
	var eventProducer *infrakafka.EventProducer
	if cfg.Kafka.Enabled {
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}
		eventProducer = infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.Topic)
		ingestOpts = append(ingestOpts, ingest.Publisher(eventProducer))
	}

	ingestUseCase := ingest.New(
		ingest.NewValidator(cfg.Upload.MaxFileSize),
		ingest.NewMerger(loc, time.Now),
		extractor.New(loc),
		objects,
		store,
		l,
		ingestOpts...,
	)

	queryUseCase := query.New(store, cfg.Search.Window, l)

	reconcileUseCase := reconcile.New(store, objects, cfg.Reconciler.GracePeriod, l, reconcile.Metrics(m))

	// Reconcile Worker
	var reconcileWorker *reconcileworker.Worker
	if cfg.Reconciler.Enabled {
		reconcileWorker = reconcileworker.New(
			reconcileUseCase,
			l,
			cfg.Reconciler.Interval,
			cfg.Reconciler.PassTimeout,
			cfg.Reconciler.Repair,
		)
	}

	// Kafka as Controller
	var kafkaController *kafkactrl.KafkaController
	if cfg.Kafka.Enabled {
		kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
		}

		workers := cfg.KafkaController.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}

		kafkaController = kafkactrl.New(
			thumbnailuc.New(objects, thumbnail.New(cfg.Thumbnail.Width, cfg.Thumbnail.Height), l),
			infrakafka.NewEventConsumer(kafkaConsumer),
			l,
			cfg.KafkaController.CommitTimeout,
			cfg.KafkaController.ProcessTimeout,
			workers,
			m,
		)
	}

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		httpserver.ProxyHeader(cfg.HTTP.ProxyHeader),
		httpserver.BodyLimit(int(cfg.Upload.MaxFileSize)+multipartOverhead),
		httpserver.ErrorHandler(v1.ErrorHandler),
	)
	restapi.NewRouter(httpServer.App, cfg, ingestUseCase, queryUseCase, reg, l)

	// Start Components
	if reconcileWorker != nil {
		err = reconcileWorker.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - reconcileWorker.Start: %w", err))
		}
	}
	if kafkaController != nil {
		err = kafkaController.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if reconcileWorker != nil {
		rwShutdownCtx, rwShutdownCancel := context.WithTimeout(ctx, cfg.Reconciler.ShutdownTimeout)
		defer rwShutdownCancel()
		err = reconcileWorker.Shutdown(rwShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - reconcileWorker.Shutdown: %w", err))
		}
	}

	if kafkaController != nil {
		kcShutdownCtx, kcShutdownCancel := context.WithTimeout(ctx, cfg.KafkaController.ShutdownTimeout)
		defer kcShutdownCancel()
		err = kafkaController.Shutdown(kcShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - kafkaController.Shutdown: %w", err))
		}
	}

	if eventProducer != nil {
		err = eventProducer.Close()
		if err != nil {
			l.Error(fmt.Errorf("app - Run - eventProducer.Close: %w", err))
		}
	}
}
