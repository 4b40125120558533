package thumbnail

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
)

type UseCase struct {
	objects  repo.ObjectStore
	renderer infrastructure.ThumbnailRenderer
	logger   logger.Interface
}

func New(objects repo.ObjectStore, renderer infrastructure.ThumbnailRenderer, l logger.Interface) *UseCase {
	return &UseCase{
		objects:  objects,
		renderer: renderer,
		logger:   l,
	}
}

// Handle keeps thumbnails/<storagePath> in step with the original object.
func (uc *UseCase) Handle(ctx context.Context, event entity.ImageEvent) error {
	switch event.Type {
	case entity.EventImageCreated:
		return uc.create(ctx, event)
	case entity.EventImageDeleted:
		return uc.delete(ctx, event)
	default:
		return fmt.Errorf("ThumbnailUseCase - Handle - %s: %w", event.Type, errs.ErrUnknownEvent)
	}
}

func (uc *UseCase) create(ctx context.Context, event entity.ImageEvent) error {
	// 1. скачиваем оригинал
	data, err := uc.objects.Get(ctx, event.StoragePath)
	if err != nil {
		// оригинал уже удалён, делать нечего
		if errors.Is(err, errs.ErrRecordNotFound) {
			uc.logger.Warn("ThumbnailUseCase - create - original %s is gone", event.StoragePath)
			return nil
		}
		return fmt.Errorf("ThumbnailUseCase - create - uc.objects.Get: %w", err)
	}

	// 2. рендерим превью
	thumb, contentType, err := uc.renderer.Thumbnail(ctx, event.MimeType, data)
	if err != nil {
		if errors.Is(err, errs.ErrUnsupported) {
			uc.logger.Debug("ThumbnailUseCase - create - skip %s (%s)", event.ImageID, event.MimeType)
			return nil
		}
		return fmt.Errorf("ThumbnailUseCase - create - uc.renderer.Thumbnail: %w", err)
	}

	// 3. кладём рядом с оригиналом под thumbnails/
	err = uc.objects.PutAt(ctx, objectstore.ThumbnailKey(event.StoragePath), thumb, contentType)
	if err != nil {
		return fmt.Errorf("ThumbnailUseCase - create - uc.objects.PutAt: %w", err)
	}

	return nil
}

func (uc *UseCase) delete(ctx context.Context, event entity.ImageEvent) error {
	err := uc.objects.Delete(ctx, objectstore.ThumbnailKey(event.StoragePath))
	if err != nil {
		return fmt.Errorf("ThumbnailUseCase - delete - uc.objects.Delete: %w", err)
	}

	return nil
}
