package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/segmentio/kafka-go"
)

const eventTypeHeader = "event_type"

// decodeEvent reads an image event; the type header wins over an empty body field.
func decodeEvent(msg kafka.Message) (entity.ImageEvent, error) {
	var event entity.ImageEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return entity.ImageEvent{}, fmt.Errorf("decodeEvent - json.Unmarshal: %w", err)
	}

	if event.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == eventTypeHeader {
				event.Type = entity.EventType(h.Value)
			}
		}
	}

	if event.StoragePath == "" {
		return entity.ImageEvent{}, fmt.Errorf("decodeEvent - event %s has no storage path", event.EventID)
	}

	return event, nil
}
