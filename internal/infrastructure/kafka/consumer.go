package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/Photo-Ingest/pkg/kafka/consumer"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// EventConsumer reads image events of one consumer group. Offsets are
// committed explicitly by the caller.
type EventConsumer struct {
	*consumer.Consumer
}

func NewEventConsumer(c *consumer.Consumer) *EventConsumer {
	return &EventConsumer{c}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.Reader.FetchMessage(ctx)
	if err != nil {
		// io.EOF - reader закрыт, дальше читать нечего
		if errors.Is(err, io.EOF) {
			return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent: %w", errs.ErrConsumerClosed)
		}
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *EventConsumer) CommitEvent(ctx context.Context, msg kafka.Message) error {
	if err := ec.Reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - partition %d offset %d: %w", msg.Partition, msg.Offset, err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	if err := ec.Consumer.Close(); err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}
