package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventImageCreated EventType = "image.created"
	EventImageDeleted EventType = "image.deleted"
)

type ImageEvent struct {
	EventID     uuid.UUID `json:"eventId"`
	Type        EventType `json:"type"`
	ImageID     uuid.UUID `json:"imageId"`
	StoragePath string    `json:"storagePath"`
	MimeType    string    `json:"mimeType"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewImageEvent(t EventType, rec *ImageRecord) ImageEvent {
	return ImageEvent{
		EventID:     uuid.New(),
		Type:        t,
		ImageID:     rec.ID,
		StoragePath: rec.StoragePath,
		MimeType:    rec.MimeType,
		OccurredAt:  time.Now(),
	}
}
