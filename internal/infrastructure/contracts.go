package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/segmentio/kafka-go"
)

type (
	MetadataExtractor interface {
		Extract(data []byte) entity.ExtractionResult
	}

	EventPublisher interface {
		Publish(ctx context.Context, event entity.ImageEvent) error
		Close() error
	}

	EventConsumer interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvent(ctx context.Context, event kafka.Message) error
		Close() error
	}

	ThumbnailRenderer interface {
		Thumbnail(ctx context.Context, contentType string, data []byte) ([]byte, string, error)
	}

	Metrics interface {
		UploadAccepted(size int64)
		UploadRejected(code string)
		StageFailed(stage string)
		EventPublished(eventType string, ok bool)
		ThumbnailHandled(eventType string, ok bool)
		ReconcileFinished(r *entity.ReconcileReport)
	}
)
