package reconcile_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/controller/worker/reconcile"
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	runs   atomic.Int32
	repair atomic.Bool
	err    error
}

func (f *fakeReconciler) Reconcile(_ context.Context, repair bool) (*entity.ReconcileReport, error) {
	f.runs.Add(1)
	f.repair.Store(repair)
	if f.err != nil {
		return nil, f.err
	}

	return &entity.ReconcileReport{Repaired: repair}, nil
}

func TestWorker_RunsPeriodically(t *testing.T) {
	rec := &fakeReconciler{}
	w := reconcile.New(rec, logger.Nop(), 10*time.Millisecond, time.Second, true)

	require.NoError(t, w.Start(context.Background()))
	require.Error(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool { return rec.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, rec.repair.Load())

	require.NoError(t, w.Shutdown(context.Background()))

	// после остановки проходов больше нет
	runs := rec.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, rec.runs.Load())
}

func TestWorker_KeepsRunningAfterFailure(t *testing.T) {
	rec := &fakeReconciler{err: errors.New("redis down")}
	w := reconcile.New(rec, logger.Nop(), 10*time.Millisecond, time.Second, false)

	require.NoError(t, w.Start(context.Background()))
	assert.Eventually(t, func() bool { return rec.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Shutdown(context.Background()))
}

func TestWorker_ShutdownBeforeStart(t *testing.T) {
	w := reconcile.New(&fakeReconciler{}, logger.Nop(), time.Minute, time.Second, false)

	assert.NoError(t, w.Shutdown(context.Background()))
}
