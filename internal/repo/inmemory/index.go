package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
)

type timelineEntry struct {
	id    uuid.UUID
	score int64
}

// RecordIndex keeps records in process memory. Each exported method takes the
// lock once, so the three structures can still diverge through the inspector.
type RecordIndex struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]entity.ImageRecord
	timeline []timelineEntry
	counters entity.Counters
}

func NewRecordIndex() *RecordIndex {
	return &RecordIndex{
		records: make(map[uuid.UUID]entity.ImageRecord),
	}
}

func (r *RecordIndex) Save(_ context.Context, rec *entity.ImageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.ID] = *rec
	r.addTimeline(rec.ID, rec.Score())
	r.counters.TotalImages++
	r.counters.TotalSize += rec.Size

	return nil
}

func (r *RecordIndex) Delete(_ context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("RecordIndex - Delete: %w", errs.ErrRecordNotFound)
	}

	delete(r.records, id)
	r.removeTimeline(id)
	r.counters.TotalImages--
	r.counters.TotalSize -= rec.Size

	return &rec, nil
}

func (r *RecordIndex) GetByID(_ context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("RecordIndex - GetByID: %w", errs.ErrRecordNotFound)
	}

	return &rec, nil
}

func (r *RecordIndex) Range(_ context.Context, opts entity.ListOptions) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.timeline)
	if opts.Offset >= n {
		return []uuid.UUID{}, nil
	}

	end := min(opts.Offset+opts.Limit, n)
	ids := make([]uuid.UUID, 0, end-opts.Offset)
	for i := opts.Offset; i < end; i++ {
		idx := i
		if opts.Order != entity.OrderAsc {
			idx = n - 1 - i
		}
		ids = append(ids, r.timeline[idx].id)
	}

	return ids, nil
}

func (r *RecordIndex) GetMany(_ context.Context, ids []uuid.UUID) ([]*entity.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.ImageRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.records[id]; ok {
			out = append(out, &rec)
		}
	}

	return out, nil
}

func (r *RecordIndex) Counters(_ context.Context) (entity.Counters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.counters, nil
}

func (r *RecordIndex) RecordIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}

	return ids, nil
}

func (r *RecordIndex) TimelineIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.timeline))
	for _, e := range r.timeline {
		ids = append(ids, e.id)
	}

	return ids, nil
}

func (r *RecordIndex) AddTimelineEntry(_ context.Context, id uuid.UUID, score int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addTimeline(id, score)

	return nil
}

func (r *RecordIndex) RemoveTimelineEntry(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeTimeline(id)

	return nil
}

func (r *RecordIndex) SetCounters(_ context.Context, c entity.Counters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters = c

	return nil
}

// addTimeline behaves like a sorted set: re-adding a member updates its score.
func (r *RecordIndex) addTimeline(id uuid.UUID, score int64) {
	r.removeTimeline(id)

	i := sort.Search(len(r.timeline), func(i int) bool {
		return r.timeline[i].score > score
	})
	r.timeline = append(r.timeline, timelineEntry{})
	copy(r.timeline[i+1:], r.timeline[i:])
	r.timeline[i] = timelineEntry{id: id, score: score}
}

func (r *RecordIndex) removeTimeline(id uuid.UUID) {
	for i, e := range r.timeline {
		if e.id == id {
			r.timeline = append(r.timeline[:i], r.timeline[i+1:]...)
			return
		}
	}
}
