package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/metrics"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	DefaultUploadSource = "ios-shortcuts"
	defaultFileName     = "image.jpg"

	// sizeMatchTolerance is how far the declared size may drift from the payload.
	sizeMatchTolerance = 1000
)

// UseCase runs the write path: validate, extract, merge, tag, store, index.
type UseCase struct {
	validator *Validator
	merger    *Merger
	extractor infrastructure.MetadataExtractor
	objects   repo.ObjectStore
	index     repo.RecordIndex
	publisher infrastructure.EventPublisher
	metrics   infrastructure.Metrics

	uploadSource string
	now          func() time.Time

	logger logger.Interface
}

func New(
	validator *Validator,
	merger *Merger,
	extractor infrastructure.MetadataExtractor,
	objects repo.ObjectStore,
	index repo.RecordIndex,
	l logger.Interface,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		validator:    validator,
		merger:       merger,
		extractor:    extractor,
		objects:      objects,
		index:        index,
		metrics:      metrics.Nop{},
		uploadSource: DefaultUploadSource,
		now:          time.Now,
		logger:       l,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *UseCase) Upload(ctx context.Context, in entity.UploadInput) (*entity.ImageRecord, error) {
	// 1. валидация
	if err := uc.validator.Validate(in.Data, in.MimeType).Err(); err != nil {
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			uc.metrics.UploadRejected(string(ve.Code))
		}
		return nil, fmt.Errorf("IngestUseCase - Upload - uc.validator.Validate: %w", err)
	}

	fileName := in.FileName
	if fileName == "" {
		fileName = defaultFileName
	}

	// 2. метаданные клиента и EXIF
	client := uc.merger.ParseClientFields(in.Params, fileName)

	extraction := uc.extractor.Extract(in.Data)
	if !extraction.IsAvailable() {
		uc.logger.Debug("IngestUseCase - Upload - embedded metadata unavailable: %s", extraction.UnavailableReason)
	}
	embedded := extraction.Metadata

	// 3. слияние и теги
	summary := uc.merger.Merge(client, embedded)
	shotTime := summary.ShotTime.OrElse(uc.now())

	tags := GenerateTags(TagInput{
		Device:       summary.Device,
		Location:     summary.Location,
		ShotTime:     shotTime,
		Extension:    client.Extension,
		OriginalName: client.OriginalName,
	})

	// 4. объект в хранилище
	obj, err := uc.objects.Put(ctx, in.Data, fileName, in.MimeType)
	if err != nil {
		uc.metrics.StageFailed("store")
		return nil, fmt.Errorf("IngestUseCase - Upload - uc.objects.Put: %w", err)
	}

	rec := &entity.ImageRecord{
		ID:               obj.ID,
		FileName:         obj.FileName,
		OriginalName:     client.OriginalName,
		URL:              obj.URL,
		StoragePath:      obj.StoragePath,
		Size:             obj.Size,
		MimeType:         obj.MimeType,
		UploadTime:       uc.now(),
		ShotTime:         entity.Some(shotTime),
		EmbeddedMetadata: &embedded,
		ClientMetadata:   &client,
		Summary:          summary,
		Tags:             tags,
		Extra: entity.Extra{
			UserAgent:    in.UserAgent,
			ClientIP:     in.ClientIP,
			UploadSource: uc.uploadSource,
			SizeMatch:    sizeMatches(client.ClientSize, obj.Size),
		},
	}

	// 5. запись, индекс, счётчики
	if err = uc.index.Save(ctx, rec); err != nil {
		uc.metrics.StageFailed("index")

		// удаляем загруженный объект, иначе останется сирота
		if deleteErr := uc.objects.Delete(ctx, obj.StoragePath); deleteErr != nil {
			uc.logger.Error(deleteErr, "IngestUseCase - Upload - uc.objects.Delete")
		}

		return nil, fmt.Errorf("IngestUseCase - Upload - uc.index.Save: %w: %w", errs.ErrDatabase, err)
	}

	uc.metrics.UploadAccepted(rec.Size)
	uc.publish(ctx, entity.EventImageCreated, rec)

	uc.logger.Info("IngestUseCase - Upload - stored %s (%d bytes) as %s", rec.OriginalName, rec.Size, rec.ID)

	return rec, nil
}

// Delete removes the record from the index and then its object. A failed object
// delete leaves an orphan for the reconciler and is only logged.
func (uc *UseCase) Delete(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	rec, err := uc.index.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, fmt.Errorf("IngestUseCase - Delete - uc.index.Delete: %w", err)
		}
		return nil, fmt.Errorf("IngestUseCase - Delete - uc.index.Delete: %w: %w", errs.ErrDatabase, err)
	}

	if err = uc.objects.Delete(ctx, rec.StoragePath); err != nil {
		uc.logger.Warn("IngestUseCase - Delete - uc.objects.Delete %s: %v", rec.StoragePath, err)
	}

	uc.publish(ctx, entity.EventImageDeleted, rec)

	return rec, nil
}

func (uc *UseCase) publish(ctx context.Context, t entity.EventType, rec *entity.ImageRecord) {
	if uc.publisher == nil {
		return
	}

	err := uc.publisher.Publish(ctx, entity.NewImageEvent(t, rec))
	uc.metrics.EventPublished(string(t), err == nil)
	if err != nil {
		uc.logger.Warn("IngestUseCase - publish - %s %s: %v", t, rec.ID, err)
	}
}

func sizeMatches(declared entity.Optional[int64], actual int64) bool {
	d, ok := declared.Get()
	if !ok {
		return true
	}

	diff := d - actual
	if diff < 0 {
		diff = -diff
	}

	return diff < sizeMatchTolerance
}

// MaxUploadSize is the configured payload ceiling, used to bound request bodies.
func (uc *UseCase) MaxUploadSize() int64 {
	return uc.validator.MaxSize()
}
