package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure"
	"github.com/andreyxaxa/Photo-Ingest/internal/infrastructure/metrics"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo/objectstore"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultGracePeriod = time.Hour

	resolveBatch       = 100
	resolveConcurrency = 4
)

// UseCase compares the object store, the primary records, the timeline and the
// counters, and optionally repairs what diverged.
type UseCase struct {
	store   repo.RecordStore
	objects repo.ObjectStore
	grace   time.Duration
	now     func() time.Time
	metrics infrastructure.Metrics

	logger logger.Interface
}

func New(store repo.RecordStore, objects repo.ObjectStore, grace time.Duration, l logger.Interface, opts ...Option) *UseCase {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	uc := &UseCase{
		store:   store,
		objects: objects,
		grace:   grace,
		now:     time.Now,
		metrics: metrics.Nop{},
		logger:  l,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

type snapshot struct {
	recordIDs   []uuid.UUID
	timelineIDs []uuid.UUID
	counters    entity.Counters
	objects     []entity.ObjectInfo
}

func (uc *UseCase) Reconcile(ctx context.Context, repair bool) (*entity.ReconcileReport, error) {
	snap, err := uc.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReconcileUseCase - Reconcile - uc.snapshot: %w", err)
	}

	records, err := uc.resolve(ctx, snap.recordIDs)
	if err != nil {
		return nil, fmt.Errorf("ReconcileUseCase - Reconcile - uc.resolve: %w", err)
	}

	report := &entity.ReconcileReport{
		Records:          len(records),
		IndexEntries:     len(snap.timelineIDs),
		Objects:          len(snap.objects),
		DanglingIndex:    []uuid.UUID{},
		UnindexedRecords: []uuid.UUID{},
		OrphanObjects:    []string{},
		RemovedObjects:   []string{},
		CountersBefore:   snap.counters,
	}

	inTimeline := make(map[uuid.UUID]struct{}, len(snap.timelineIDs))
	for _, id := range snap.timelineIDs {
		inTimeline[id] = struct{}{}
		if _, ok := records[id]; !ok {
			report.DanglingIndex = append(report.DanglingIndex, id)
		}
	}

	paths := make(map[string]struct{}, len(records))
	for id, rec := range records {
		paths[rec.StoragePath] = struct{}{}
		report.CountersActual.TotalImages++
		report.CountersActual.TotalSize += rec.Size

		if _, ok := inTimeline[id]; !ok {
			report.UnindexedRecords = append(report.UnindexedRecords, id)
		}
	}

	var orphans []entity.ObjectInfo
	for _, o := range snap.objects {
		if _, ok := paths[o.Key]; !ok {
			orphans = append(orphans, o)
			report.OrphanObjects = append(report.OrphanObjects, o.Key)
		}
	}

	if repair {
		uc.repair(ctx, report, records, orphans)
	}

	uc.metrics.ReconcileFinished(report)

	return report, nil
}

func (uc *UseCase) snapshot(ctx context.Context) (*snapshot, error) {
	var snap snapshot

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids, err := uc.store.RecordIDs(ctx)
		if err != nil {
			return fmt.Errorf("uc.store.RecordIDs: %w", err)
		}
		snap.recordIDs = ids
		return nil
	})

	g.Go(func() error {
		ids, err := uc.store.TimelineIDs(ctx)
		if err != nil {
			return fmt.Errorf("uc.store.TimelineIDs: %w", err)
		}
		snap.timelineIDs = ids
		return nil
	})

	g.Go(func() error {
		c, err := uc.store.Counters(ctx)
		if err != nil {
			return fmt.Errorf("uc.store.Counters: %w", err)
		}
		snap.counters = c
		return nil
	})

	g.Go(func() error {
		objects, err := uc.objects.List(ctx, objectstore.ImagesPrefix)
		if err != nil {
			return fmt.Errorf("uc.objects.List: %w", err)
		}
		snap.objects = objects
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snap, nil
}

// resolve loads records in batches; ids removed meanwhile are simply missing.
func (uc *UseCase) resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.ImageRecord, error) {
	var mu sync.Mutex
	out := make(map[uuid.UUID]*entity.ImageRecord, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for start := 0; start < len(ids); start += resolveBatch {
		batch := ids[start:min(start+resolveBatch, len(ids))]

		g.Go(func() error {
			recs, err := uc.store.GetMany(ctx, batch)
			if err != nil {
				return fmt.Errorf("uc.store.GetMany: %w", err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range recs {
				out[r.ID] = r
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// repair applies fixes step by step; a failed step is logged and the rest still run.
func (uc *UseCase) repair(
	ctx context.Context,
	report *entity.ReconcileReport,
	records map[uuid.UUID]*entity.ImageRecord,
	orphans []entity.ObjectInfo,
) {
	report.Repaired = true

	for _, id := range report.DanglingIndex {
		if err := uc.store.RemoveTimelineEntry(ctx, id); err != nil {
			uc.logger.Error(err, "ReconcileUseCase - repair - uc.store.RemoveTimelineEntry %s", id)
		}
	}

	for _, id := range report.UnindexedRecords {
		if err := uc.store.AddTimelineEntry(ctx, id, records[id].Score()); err != nil {
			uc.logger.Error(err, "ReconcileUseCase - repair - uc.store.AddTimelineEntry %s", id)
		}
	}

	if report.CountersDrifted() {
		if err := uc.store.SetCounters(ctx, report.CountersActual); err != nil {
			uc.logger.Error(err, "ReconcileUseCase - repair - uc.store.SetCounters")
		}
	}

	// объекты моложе grace могут принадлежать загрузке, которая ещё не проиндексирована
	cutoff := uc.now().Add(-uc.grace)
	for _, o := range orphans {
		if o.LastModified.After(cutoff) {
			continue
		}

		if err := uc.objects.Delete(ctx, o.Key); err != nil {
			uc.logger.Error(err, "ReconcileUseCase - repair - uc.objects.Delete %s", o.Key)
			continue
		}
		report.RemovedObjects = append(report.RemovedObjects, o.Key)
	}

	uc.logger.Info("ReconcileUseCase - repair - dangling=%d unindexed=%d orphans removed=%d/%d counters drifted=%t",
		len(report.DanglingIndex), len(report.UnindexedRecords),
		len(report.RemovedObjects), len(report.OrphanObjects), report.CountersDrifted())
}
