package app

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Photo-Ingest/config"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/persistent"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/minioclient"
	"github.com/andreyxaxa/Photo-Ingest/pkg/postgres"
	"github.com/andreyxaxa/Photo-Ingest/pkg/redisclient"
	"github.com/andreyxaxa/Photo-Ingest/pkg/s3client"
)

// NewBlobStorage connects the object backend selected by OBJECT_STORE_BACKEND.
func NewBlobStorage(ctx context.Context, cfg *config.Config) (repo.BlobStorage, error) {
	switch cfg.ObjectStore.Backend {
	case config.BackendS3:
		s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
		defer s3Cancel()

		s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket,
			s3client.Region(cfg.S3.Region))
		if err != nil {
			return nil, fmt.Errorf("app - NewBlobStorage - s3client.New: %w", err)
		}

		return persistent.NewS3BlobStorage(s3c), nil
	case config.BackendMinio:
		mc, err := minioclient.New(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket,
			minioclient.UseSSL(cfg.Minio.UseSSL))
		if err != nil {
			return nil, fmt.Errorf("app - NewBlobStorage - minioclient.New: %w", err)
		}

		return persistent.NewMinioBlobStorage(mc), nil
	case config.BackendMemory:
		return inmemory.NewBlobStorage(), nil
	default:
		return nil, fmt.Errorf("app - NewBlobStorage - unknown backend %q", cfg.ObjectStore.Backend)
	}
}

// NewRecordStore connects the index backend selected by INDEX_BACKEND. The
// returned closer releases the connection pool.
func NewRecordStore(ctx context.Context, cfg *config.Config, l logger.Interface) (repo.RecordStore, func(), error) {
	switch cfg.Index.Backend {
	case config.BackendPostgres:
		pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			return nil, nil, fmt.Errorf("app - NewRecordStore - postgres.New: %w", err)
		}

		if err = persistent.Migrate(ctx, pg); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("app - NewRecordStore - persistent.Migrate: %w", err)
		}

		return persistent.NewPostgresRecordIndex(pg), pg.Close, nil
	case config.BackendRedis:
		rc, err := redisclient.New(ctx, cfg.Redis.URL, redisclient.PoolSize(cfg.Redis.PoolSize))
		if err != nil {
			return nil, nil, fmt.Errorf("app - NewRecordStore - redisclient.New: %w", err)
		}

		closer := func() {
			if err := rc.Close(); err != nil {
				l.Error(err, "app - NewRecordStore - rc.Close")
			}
		}

		return persistent.NewRedisRecordIndex(rc), closer, nil
	case config.BackendMemory:
		return inmemory.NewRecordIndex(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("app - NewRecordStore - unknown backend %q", cfg.Index.Backend)
	}
}
