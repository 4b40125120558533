package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/metrics"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

const (
	// readRetryDelay throttles the read loop while the broker is unreachable.
	readRetryDelay = time.Second

	// Группа коммитит максимальный offset партиции, поэтому сообщение, на котором
	// сдались, перекроется следующим коммитом и повторно не придёт.
	handleAttempts   = 3
	handleRetryDelay = 500 * time.Millisecond
)

type KafkaController struct {
	thumbs  usecase.ThumbnailUseCase
	ec      infrastructure.EventConsumer
	metrics infrastructure.Metrics
	logger  logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration
	retryDelay     time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	thumbs usecase.ThumbnailUseCase,
	ec infrastructure.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
	m infrastructure.Metrics,
) *KafkaController {
	if workers <= 0 {
		workers = 1
	}
	if m == nil {
		m = metrics.Nop{}
	}

	return &KafkaController{
		thumbs:         thumbs,
		ec:             ec,
		metrics:        m,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		retryDelay:     handleRetryDelay,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// канал для задач
	tasks := make(chan kafka.Message, c.workers*2)

	// запускаем воркеры
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. читаем из кафки
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if c.ctx.Err() != nil || errors.Is(err, errs.ErrConsumerClosed) {
						return
					}
					c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")

					select {
					case <-time.After(readRetryDelay):
					case <-c.ctx.Done():
						return
					}
					continue
				}

				// 2. отправляем в канал для воркеров
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// handleEvent returns true when the message may be committed. Handler failures
// are retried in place up to handleAttempts times.
func (c *KafkaController) handleEvent(msg kafka.Message) bool {
	event, err := decodeEvent(msg)
	if err != nil {
		// битое сообщение не станет лучше при повторе
		c.logger.Error(err, "KafkaController - handleEvent - decodeEvent offset %d", msg.Offset)
		c.metrics.ThumbnailHandled("malformed", false)
		return true
	}

	for attempt := 1; ; attempt++ {
		err = c.handleOnce(event)
		if err == nil || errors.Is(err, errs.ErrUnknownEvent) || attempt == handleAttempts {
			break
		}

		c.logger.Warn("KafkaController - handleEvent - attempt %d for %s failed: %v", attempt, event.ImageID, err)

		select {
		case <-time.After(c.retryDelay * time.Duration(attempt)):
		case <-c.ctx.Done():
			return false
		}
	}

	switch {
	case err == nil:
		c.metrics.ThumbnailHandled(string(event.Type), true)
		return true
	case errors.Is(err, errs.ErrUnknownEvent):
		c.logger.Warn("KafkaController - handleEvent - skip event %s of type %s", event.EventID, event.Type)
		c.metrics.ThumbnailHandled(string(event.Type), false)
		return true
	default:
		c.logger.Error(err, "KafkaController - handleEvent - c.thumbs.Handle")
		c.metrics.ThumbnailHandled(string(event.Type), false)
		return false
	}
}

func (c *KafkaController) handleOnce(event entity.ImageEvent) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.processTimeout)
	defer cancel()

	return c.thumbs.Handle(ctx, event)
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	// читаем канал, пока не закроется
	for msg := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			// выполняем обработку
			if !c.handleEvent(msg) {
				return
			}

			// коммитим после успешной обработки
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err := c.ec.CommitEvent(commitCtx, msg)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.ec.Close(); err != nil {
			c.logger.Error(err, "KafkaController - Shutdown - c.ec.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown: %w", ctx.Err())
	}
}
