package usecase

import (
	"context"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/google/uuid"
)

type (
	IngestUseCase interface {
		Upload(ctx context.Context, in entity.UploadInput) (*entity.ImageRecord, error)
		Delete(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		MaxUploadSize() int64
	}

	QueryUseCase interface {
		List(ctx context.Context, opts entity.ListOptions) ([]*entity.ImageRecord, error)
		Search(ctx context.Context, query string, limit int) ([]*entity.ImageRecord, error)
		Get(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		Stats(ctx context.Context) entity.Stats
	}

	ReconcileUseCase interface {
		Reconcile(ctx context.Context, repair bool) (*entity.ReconcileReport, error)
	}

	ThumbnailUseCase interface {
		Handle(ctx context.Context, event entity.ImageEvent) error
	}
)
