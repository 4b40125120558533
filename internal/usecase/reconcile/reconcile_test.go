package reconcile_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/inmemory"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/repotest"
	"github.com/andreyxaxa/Photo-Ingest/internal/usecase/reconcile"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 9, 26, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	blob  *inmemory.BlobStorage
	index *inmemory.RecordIndex
	uc    *reconcile.UseCase
	recs  []*entity.ImageRecord
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		blob:  inmemory.NewBlobStorage(),
		index: inmemory.NewRecordIndex(),
	}

	for i := 0; i < 3; i++ {
		rec := repotest.NewRecord(now.Add(-24*time.Hour), time.Duration(i)*time.Minute, 1000)
		require.NoError(t, f.index.Save(f.ctx, rec))
		require.NoError(t, f.blob.Upload(f.ctx, rec.StoragePath, bytes.NewReader(make([]byte, 1000)), "image/jpeg", 1000))
		f.recs = append(f.recs, rec)
	}

	store := objectstore.New(f.blob, "https://cdn.example.com")
	f.uc = reconcile.New(f.index, store, time.Hour, logger.Nop(), reconcile.Clock(func() time.Time { return now }))

	return f
}

func TestReconcile_Clean(t *testing.T) {
	f := newFixture(t)

	report, err := f.uc.Reconcile(f.ctx, false)
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 3, report.IndexEntries)
	assert.Equal(t, 3, report.Objects)
	assert.Equal(t, entity.Counters{TotalImages: 3, TotalSize: 3000}, report.CountersActual)
}

func TestReconcile_DetectsWithoutRepair(t *testing.T) {
	f := newFixture(t)

	dangling := uuid.New()
	require.NoError(t, f.index.AddTimelineEntry(f.ctx, dangling, now.UnixMilli()))
	require.NoError(t, f.index.RemoveTimelineEntry(f.ctx, f.recs[0].ID))
	require.NoError(t, f.index.SetCounters(f.ctx, entity.Counters{TotalImages: 7, TotalSize: 1}))
	require.NoError(t, f.blob.Upload(f.ctx, "images/2025/09/25/doubao-orphan.jpg", bytes.NewReader([]byte{1}), "image/jpeg", 1))

	report, err := f.uc.Reconcile(f.ctx, false)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []uuid.UUID{dangling}, report.DanglingIndex)
	assert.Equal(t, []uuid.UUID{f.recs[0].ID}, report.UnindexedRecords)
	assert.Equal(t, []string{"images/2025/09/25/doubao-orphan.jpg"}, report.OrphanObjects)
	assert.True(t, report.CountersDrifted())
	assert.False(t, report.Repaired)

	// nothing changed
	timeline, err := f.index.TimelineIDs(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, timeline, dangling)
}

func TestReconcile_Repair(t *testing.T) {
	f := newFixture(t)

	dangling := uuid.New()
	require.NoError(t, f.index.AddTimelineEntry(f.ctx, dangling, now.UnixMilli()))
	require.NoError(t, f.index.RemoveTimelineEntry(f.ctx, f.recs[0].ID))
	require.NoError(t, f.index.SetCounters(f.ctx, entity.Counters{TotalImages: 7, TotalSize: 1}))

	oldOrphan := "images/2025/09/20/doubao-old.jpg"
	freshOrphan := "images/2025/09/26/doubao-fresh.jpg"
	require.NoError(t, f.blob.Upload(f.ctx, oldOrphan, bytes.NewReader([]byte{1}), "image/jpeg", 1))
	require.NoError(t, f.blob.Upload(f.ctx, freshOrphan, bytes.NewReader([]byte{1}), "image/jpeg", 1))
	f.blob.Touch(oldOrphan, now.Add(-2*time.Hour))
	f.blob.Touch(freshOrphan, now.Add(-10*time.Minute))

	report, err := f.uc.Reconcile(f.ctx, true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	assert.ElementsMatch(t, []string{oldOrphan, freshOrphan}, report.OrphanObjects)
	assert.Equal(t, []string{oldOrphan}, report.RemovedObjects)

	// the index is consistent again, the fresh orphan is kept
	after, err := f.uc.Reconcile(f.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, after.DanglingIndex)
	assert.Empty(t, after.UnindexedRecords)
	assert.False(t, after.CountersDrifted())
	assert.Equal(t, []string{freshOrphan}, after.OrphanObjects)

	ids, err := f.index.Range(f.ctx, entity.ListOptions{Limit: 10, Order: entity.OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.recs[0].ID, f.recs[1].ID, f.recs[2].ID}, ids)

	counters, err := f.index.Counters(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Counters{TotalImages: 3, TotalSize: 3000}, counters)
}
