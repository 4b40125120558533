// Package repotest holds the behaviour every RecordIndex backend must share.
package repotest

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type RecordIndexSuite struct {
	suite.Suite

	// NewStore returns an empty store; it runs before every test.
	NewStore func() repo.RecordStore

	store repo.RecordStore
	ctx   context.Context
}

func (s *RecordIndexSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

// NewRecord builds a minimal record uploaded at base + offset.
func NewRecord(base time.Time, offset time.Duration, size int64) *entity.ImageRecord {
	id := uuid.New()

	return &entity.ImageRecord{
		ID:           id,
		FileName:     fmt.Sprintf("doubao-%s.jpg", id),
		OriginalName: "IMG_0001.JPG",
		StoragePath:  "images/2025/09/25/doubao-" + id.String() + ".jpg",
		Size:         size,
		MimeType:     "image/jpeg",
		UploadTime:   base.Add(offset),
		ShotTime:     entity.Some(base),
		Tags:         []string{"doubao", "cat"},
		Extra:        entity.Extra{UploadSource: "ios-shortcuts", SizeMatch: true},
	}
}

func (s *RecordIndexSuite) saveFive() []*entity.ImageRecord {
	base := time.Date(2025, 9, 25, 12, 0, 0, 0, time.UTC)

	recs := make([]*entity.ImageRecord, 0, 5)
	for i := 0; i < 5; i++ {
		rec := NewRecord(base, time.Duration(i)*time.Second, int64(100*(i+1)))
		s.Require().NoError(s.store.Save(s.ctx, rec))
		recs = append(recs, rec)
	}

	return recs
}

func (s *RecordIndexSuite) TestSaveAndGet() {
	rec := NewRecord(time.Now().UTC().Truncate(time.Millisecond), 0, 1024)
	s.Require().NoError(s.store.Save(s.ctx, rec))

	got, err := s.store.GetByID(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(rec.FileName, got.FileName)
	s.Equal(rec.Size, got.Size)
	s.True(rec.UploadTime.Equal(got.UploadTime))
	s.Equal(rec.Tags, got.Tags)

	shot, ok := got.ShotTime.Get()
	s.True(ok)
	s.True(shot.Equal(rec.ShotTime.OrElse(time.Time{})))
}

func (s *RecordIndexSuite) TestGetMissing() {
	_, err := s.store.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, errs.ErrRecordNotFound)
}

func (s *RecordIndexSuite) TestRangeOrder() {
	recs := s.saveFive()

	desc, err := s.store.Range(s.ctx, entity.ListOptions{Limit: 2, Offset: 0, Order: entity.OrderDesc})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{recs[4].ID, recs[3].ID}, desc)

	asc, err := s.store.Range(s.ctx, entity.ListOptions{Limit: 2, Offset: 0, Order: entity.OrderAsc})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{recs[0].ID, recs[1].ID}, asc)

	page, err := s.store.Range(s.ctx, entity.ListOptions{Limit: 2, Offset: 4, Order: entity.OrderDesc})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{recs[0].ID}, page)

	past, err := s.store.Range(s.ctx, entity.ListOptions{Limit: 2, Offset: 10, Order: entity.OrderDesc})
	s.Require().NoError(err)
	s.Empty(past)
}

func (s *RecordIndexSuite) TestGetManyDropsUnresolved() {
	recs := s.saveFive()

	got, err := s.store.GetMany(s.ctx, []uuid.UUID{recs[2].ID, uuid.New(), recs[0].ID})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(recs[2].ID, got[0].ID)
	s.Equal(recs[0].ID, got[1].ID)
}

func (s *RecordIndexSuite) TestCountersFollowSaveAndDelete() {
	before, err := s.store.Counters(s.ctx)
	s.Require().NoError(err)

	rec := NewRecord(time.Now(), 0, 102400)
	s.Require().NoError(s.store.Save(s.ctx, rec))

	afterSave, err := s.store.Counters(s.ctx)
	s.Require().NoError(err)
	s.Equal(before.TotalImages+1, afterSave.TotalImages)
	s.Equal(before.TotalSize+102400, afterSave.TotalSize)

	deleted, err := s.store.Delete(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, deleted.ID)

	afterDelete, err := s.store.Counters(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, afterDelete)

	_, err = s.store.GetByID(s.ctx, rec.ID)
	s.ErrorIs(err, errs.ErrRecordNotFound)

	ids, err := s.store.Range(s.ctx, entity.ListOptions{Limit: 100, Order: entity.OrderDesc})
	s.Require().NoError(err)
	s.NotContains(ids, rec.ID)
}

func (s *RecordIndexSuite) TestDeleteMissing() {
	_, err := s.store.Delete(s.ctx, uuid.New())
	s.ErrorIs(err, errs.ErrRecordNotFound)
}

func (s *RecordIndexSuite) TestInspector() {
	recs := s.saveFive()

	s.Require().NoError(s.store.RemoveTimelineEntry(s.ctx, recs[1].ID))
	dangling := uuid.New()
	s.Require().NoError(s.store.AddTimelineEntry(s.ctx, dangling, time.Now().UnixMilli()))

	recordIDs, err := s.store.RecordIDs(s.ctx)
	s.Require().NoError(err)
	s.Len(recordIDs, 5)
	s.Contains(recordIDs, recs[1].ID)

	timelineIDs, err := s.store.TimelineIDs(s.ctx)
	s.Require().NoError(err)
	s.Len(timelineIDs, 5)
	s.NotContains(timelineIDs, recs[1].ID)
	s.Contains(timelineIDs, dangling)

	want := entity.Counters{TotalImages: 42, TotalSize: 4200}
	s.Require().NoError(s.store.SetCounters(s.ctx, want))

	got, err := s.store.Counters(s.ctx)
	s.Require().NoError(err)
	s.Equal(want, got)
}
