package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/pkg/logger"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
)

const DefaultSearchWindow = 100

// UseCase answers reads from the record index only.
type UseCase struct {
	index        repo.RecordIndex
	searchWindow int
	now          func() time.Time

	logger logger.Interface
}

func New(index repo.RecordIndex, searchWindow int, l logger.Interface) *UseCase {
	if searchWindow <= 0 {
		searchWindow = DefaultSearchWindow
	}

	return &UseCase{
		index:        index,
		searchWindow: searchWindow,
		now:          time.Now,
		logger:       l,
	}
}

// List resolves a rank window of the timeline. Identifiers without a primary
// record are dropped.
func (uc *UseCase) List(ctx context.Context, opts entity.ListOptions) ([]*entity.ImageRecord, error) {
	opts = opts.Normalize()

	ids, err := uc.index.Range(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("QueryUseCase - List - uc.index.Range: %w: %w", errs.ErrDatabase, err)
	}

	records, err := uc.index.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("QueryUseCase - List - uc.index.GetMany: %w: %w", errs.ErrDatabase, err)
	}

	if dropped := len(ids) - len(records); dropped > 0 {
		uc.logger.Debug("QueryUseCase - List - dropped %d unresolved identifiers", dropped)
	}

	return records, nil
}

// Search scans the most recent window of records; it is not exhaustive.
func (uc *UseCase) Search(ctx context.Context, query string, limit int) ([]*entity.ImageRecord, error) {
	limit = entity.ListOptions{Limit: limit}.Normalize().Limit

	window, err := uc.List(ctx, entity.ListOptions{Limit: uc.searchWindow, Order: entity.OrderDesc})
	if err != nil {
		return nil, fmt.Errorf("QueryUseCase - Search - uc.List: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]*entity.ImageRecord, 0, limit)
	for _, rec := range window {
		if len(out) == limit {
			break
		}
		if matches(rec, needle) {
			out = append(out, rec)
		}
	}

	return out, nil
}

func (uc *UseCase) Get(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	rec, err := uc.index.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, fmt.Errorf("QueryUseCase - Get - uc.index.GetByID: %w", err)
		}
		return nil, fmt.Errorf("QueryUseCase - Get - uc.index.GetByID: %w: %w", errs.ErrDatabase, err)
	}

	return rec, nil
}

// Stats never fails: a counter read error yields zeroed figures with Error set.
func (uc *UseCase) Stats(ctx context.Context) entity.Stats {
	stats := entity.Stats{
		LastUpdated:   uc.now(),
		ServiceStatus: entity.ServiceRunning,
	}

	c, err := uc.index.Counters(ctx)
	if err != nil {
		uc.logger.Error(err, "QueryUseCase - Stats - uc.index.Counters")
		stats.Error = err.Error()

		return stats
	}

	stats.TotalImages = c.TotalImages
	stats.TotalSize = c.TotalSize
	stats.TotalSizeMB = round(float64(c.TotalSize)/1024/1024, 2)
	if c.TotalImages > 0 {
		stats.AverageSizeKB = round(float64(c.TotalSize)/float64(c.TotalImages)/1024, 1)
	}

	return stats
}

func matches(rec *entity.ImageRecord, needle string) bool {
	if strings.Contains(strings.ToLower(rec.OriginalName), needle) ||
		strings.Contains(strings.ToLower(rec.FileName), needle) {
		return true
	}

	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}

	return false
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)

	return math.Round(v*p) / p
}
