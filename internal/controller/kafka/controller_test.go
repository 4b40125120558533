package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newFakeConsumer(msgs ...kafka.Message) *fakeConsumer {
	ch := make(chan kafka.Message, len(msgs))
	for _, m := range msgs {
		ch <- m
	}

	return &fakeConsumer{msgs: ch}
}

func (f *fakeConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeConsumer) CommitEvent(_ context.Context, m kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.committed = append(f.committed, m.Offset)

	return nil
}

func (f *fakeConsumer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

func (f *fakeConsumer) Committed() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.committed...)
}

// fakeThumbs fails an image as many times as failures holds for it.
type fakeThumbs struct {
	mu       sync.Mutex
	handled  []entity.ImageEvent
	failures map[uuid.UUID]int
}

func (f *fakeThumbs) Handle(_ context.Context, event entity.ImageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handled = append(f.handled, event)
	if f.failures[event.ImageID] > 0 {
		f.failures[event.ImageID]--
		return errors.New("storage down")
	}

	return nil
}

func (f *fakeThumbs) Calls(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.handled {
		if e.ImageID == id {
			n++
		}
	}

	return n
}

func newController(thumbs *fakeThumbs, ec *fakeConsumer, workers int) *KafkaController {
	c := New(thumbs, ec, logger.Nop(), time.Second, time.Second, workers, nil)
	c.retryDelay = time.Millisecond

	return c
}

func message(t *testing.T, offset int64, event entity.ImageEvent) kafka.Message {
	t.Helper()

	b, err := json.Marshal(event)
	require.NoError(t, err)

	return kafka.Message{Offset: offset, Value: b}
}

func imageEvent(t entity.EventType) entity.ImageEvent {
	return entity.ImageEvent{
		EventID:     uuid.New(),
		Type:        t,
		ImageID:     uuid.New(),
		StoragePath: "images/2025/09/25/doubao-x.jpg",
		MimeType:    "image/jpeg",
	}
}

func TestKafkaController_CommitsOnlyHandled(t *testing.T) {
	ok := imageEvent(entity.EventImageCreated)
	failing := imageEvent(entity.EventImageCreated)
	deleted := imageEvent(entity.EventImageDeleted)

	ec := newFakeConsumer(
		message(t, 1, ok),
		message(t, 2, failing),
		message(t, 3, deleted),
		kafka.Message{Offset: 4, Value: []byte("{broken")},
	)
	thumbs := &fakeThumbs{failures: map[uuid.UUID]int{failing.ImageID: 100}}

	c := newController(thumbs, ec, 2)
	require.NoError(t, c.Start(context.Background()))
	require.Error(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(ec.Committed()) == 3 && thumbs.Calls(failing.ImageID) == handleAttempts
	}, 2*time.Second, 10*time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(shutdownCtx))

	assert.ElementsMatch(t, []int64{1, 3, 4}, ec.Committed())
	assert.True(t, ec.closed)
	assert.Equal(t, 1, thumbs.Calls(ok.ImageID))
	assert.Equal(t, handleAttempts, thumbs.Calls(failing.ImageID))
	assert.Equal(t, 1, thumbs.Calls(deleted.ImageID))
}

func TestKafkaController_RetriesTransientFailure(t *testing.T) {
	flaky := imageEvent(entity.EventImageCreated)

	ec := newFakeConsumer(message(t, 7, flaky))
	thumbs := &fakeThumbs{failures: map[uuid.UUID]int{flaky.ImageID: handleAttempts - 1}}

	c := newController(thumbs, ec, 1)
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(ec.Committed()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(shutdownCtx))

	assert.Equal(t, []int64{7}, ec.Committed())
	assert.Equal(t, handleAttempts, thumbs.Calls(flaky.ImageID))
}

func TestKafkaController_ShutdownBeforeStart(t *testing.T) {
	c := New(&fakeThumbs{}, newFakeConsumer(), logger.Nop(), time.Second, time.Second, 1, nil)

	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestDecodeEvent_TypeFromHeader(t *testing.T) {
	ev := imageEvent("")
	msg := message(t, 0, ev)
	msg.Headers = []kafka.Header{{Key: eventTypeHeader, Value: []byte(entity.EventImageDeleted)}}

	got, err := decodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, entity.EventImageDeleted, got.Type)
	assert.Equal(t, ev.ImageID, got.ImageID)
}

func TestDecodeEvent_MissingPath(t *testing.T) {
	ev := imageEvent(entity.EventImageCreated)
	ev.StoragePath = ""

	_, err := decodeEvent(message(t, 0, ev))
	assert.Error(t, err)
}
