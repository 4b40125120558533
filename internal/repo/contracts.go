package repo

import (
	"context"
	"io"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/google/uuid"
)

type (
	// BlobStorage is a flat key/value object backend.
	BlobStorage interface {
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
		Download(ctx context.Context, key string) (io.ReadCloser, error)
		Delete(ctx context.Context, key string) error
		List(ctx context.Context, prefix string) ([]entity.ObjectInfo, error)
	}

	// RecordIndex keeps the primary record store, the time-ordered index and the
	// aggregate counters. Every method step is independent; nothing is rolled back.
	RecordIndex interface {
		Save(ctx context.Context, rec *entity.ImageRecord) error
		Delete(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error)
		// Range returns identifiers by rank in the time-ordered index.
		Range(ctx context.Context, opts entity.ListOptions) ([]uuid.UUID, error)
		// GetMany resolves ids in order, dropping those without a primary record.
		GetMany(ctx context.Context, ids []uuid.UUID) ([]*entity.ImageRecord, error)
		Counters(ctx context.Context) (entity.Counters, error)
	}

	// IndexInspector exposes the raw structures for reconciliation.
	IndexInspector interface {
		RecordIDs(ctx context.Context) ([]uuid.UUID, error)
		TimelineIDs(ctx context.Context) ([]uuid.UUID, error)
		AddTimelineEntry(ctx context.Context, id uuid.UUID, score int64) error
		RemoveTimelineEntry(ctx context.Context, id uuid.UUID) error
		SetCounters(ctx context.Context, c entity.Counters) error
	}

	// ObjectStore names payloads and maps storage paths to public URLs.
	ObjectStore interface {
		Put(ctx context.Context, data []byte, originalName, mimeType string) (*entity.StoredObject, error)
		PutAt(ctx context.Context, key string, data []byte, mimeType string) error
		Get(ctx context.Context, key string) ([]byte, error)
		Delete(ctx context.Context, key string) error
		List(ctx context.Context, prefix string) ([]entity.ObjectInfo, error)
	}

	RecordStore interface {
		RecordIndex
		IndexInspector
	}
)
