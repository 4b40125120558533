package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/usecase"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
)

// Worker runs reconciliation passes on a fixed interval.
type Worker struct {
	rec    usecase.ReconcileUseCase
	logger logger.Interface

	interval    time.Duration
	passTimeout time.Duration
	repair      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	rec usecase.ReconcileUseCase,
	l logger.Interface,
	interval time.Duration,
	passTimeout time.Duration,
	repair bool,
) *Worker {
	return &Worker{
		rec:         rec,
		logger:      l,
		interval:    interval,
		passTimeout: passTimeout,
		repair:      repair,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("ReconcileWorker - Start - worker already started")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.pass()
			}
		}
	}()

	return nil
}

func (w *Worker) pass() {
	ctx, cancel := context.WithTimeout(w.ctx, w.passTimeout)
	defer cancel()

	report, err := w.rec.Reconcile(ctx, w.repair)
	if err != nil {
		w.logger.Error(err, "ReconcileWorker - pass - w.rec.Reconcile")
		return
	}

	if !report.Clean() {
		w.logger.Warn("ReconcileWorker - pass - dangling=%d unindexed=%d orphans=%d counters drifted=%t repaired=%t",
			len(report.DanglingIndex), len(report.UnindexedRecords), len(report.OrphanObjects),
			report.CountersDrifted(), report.Repaired)
	}
}

func (w *Worker) Shutdown(ctx context.Context) error {
	if !w.started.Load() {
		return nil
	}

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})

	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ReconcileWorker - Shutdown: %w", ctx.Err())
	}
}
