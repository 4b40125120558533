package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/redisclient"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	recordKeyPrefix = "image:"
	timelineKey     = "images:timeline"
	totalImagesKey  = "stats:total_images"
	totalSizeKey    = "stats:total_size"
	recordScanBatch = 500
)

// RedisRecordIndex stores records as JSON strings, the timeline as a sorted set
// and both counters as integer keys.
type RedisRecordIndex struct {
	*redisclient.RedisClient
}

func NewRedisRecordIndex(rc *redisclient.RedisClient) *RedisRecordIndex {
	return &RedisRecordIndex{rc}
}

func recordKey(id uuid.UUID) string {
	return recordKeyPrefix + id.String()
}

func (r *RedisRecordIndex) Save(ctx context.Context, rec *entity.ImageRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("RedisRecordIndex - Save - json.Marshal: %w", err)
	}

	if err = r.Client.Set(ctx, recordKey(rec.ID), b, 0).Err(); err != nil {
		return fmt.Errorf("RedisRecordIndex - Save - r.Client.Set: %w", err)
	}

	err = r.Client.ZAdd(ctx, timelineKey, redis.Z{Score: float64(rec.Score()), Member: rec.ID.String()}).Err()
	if err != nil {
		return fmt.Errorf("RedisRecordIndex - Save - r.Client.ZAdd: %w", err)
	}

	if err = r.Client.Incr(ctx, totalImagesKey).Err(); err != nil {
		return fmt.Errorf("RedisRecordIndex - Save - r.Client.Incr: %w", err)
	}

	if err = r.Client.IncrBy(ctx, totalSizeKey, rec.Size).Err(); err != nil {
		return fmt.Errorf("RedisRecordIndex - Save - r.Client.IncrBy: %w", err)
	}

	return nil
}

func (r *RedisRecordIndex) Delete(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Delete - r.GetByID: %w", err)
	}

	if err = r.Client.Del(ctx, recordKey(id)).Err(); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Delete - r.Client.Del: %w", err)
	}

	if err = r.Client.ZRem(ctx, timelineKey, id.String()).Err(); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Delete - r.Client.ZRem: %w", err)
	}

	if err = r.Client.Decr(ctx, totalImagesKey).Err(); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Delete - r.Client.Decr: %w", err)
	}

	if err = r.Client.DecrBy(ctx, totalSizeKey, rec.Size).Err(); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Delete - r.Client.DecrBy: %w", err)
	}

	return rec, nil
}

func (r *RedisRecordIndex) GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	b, err := r.Client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("RedisRecordIndex - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("RedisRecordIndex - GetByID - r.Client.Get: %w", err)
	}

	var rec entity.ImageRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - GetByID - json.Unmarshal: %w", err)
	}

	return &rec, nil
}

func (r *RedisRecordIndex) Range(ctx context.Context, opts entity.ListOptions) ([]uuid.UUID, error) {
	start := int64(opts.Offset)
	stop := start + int64(opts.Limit) - 1

	var (
		members []string
		err     error
	)
	if opts.Order == entity.OrderAsc {
		members, err = r.Client.ZRange(ctx, timelineKey, start, stop).Result()
	} else {
		members, err = r.Client.ZRevRange(ctx, timelineKey, start, stop).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - Range - r.Client.ZRange: %w", err)
	}

	return parseIDs(members), nil
}

func (r *RedisRecordIndex) GetMany(ctx context.Context, ids []uuid.UUID) ([]*entity.ImageRecord, error) {
	if len(ids) == 0 {
		return []*entity.ImageRecord{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, recordKey(id))
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - GetMany - r.Client.MGet: %w", err)
	}

	out := make([]*entity.ImageRecord, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var rec entity.ImageRecord
		if err = json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("RedisRecordIndex - GetMany - json.Unmarshal: %w", err)
		}
		out = append(out, &rec)
	}

	return out, nil
}

func (r *RedisRecordIndex) Counters(ctx context.Context) (entity.Counters, error) {
	vals, err := r.Client.MGet(ctx, totalImagesKey, totalSizeKey).Result()
	if err != nil {
		return entity.Counters{}, fmt.Errorf("RedisRecordIndex - Counters - r.Client.MGet: %w", err)
	}

	var c entity.Counters
	if c.TotalImages, err = counterValue(vals[0]); err != nil {
		return entity.Counters{}, fmt.Errorf("RedisRecordIndex - Counters - %s: %w", totalImagesKey, err)
	}
	if c.TotalSize, err = counterValue(vals[1]); err != nil {
		return entity.Counters{}, fmt.Errorf("RedisRecordIndex - Counters - %s: %w", totalSizeKey, err)
	}

	return c, nil
}

func (r *RedisRecordIndex) RecordIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	iter := r.Client.Scan(ctx, 0, recordKeyPrefix+"*", recordScanBatch).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), recordKeyPrefix))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - RecordIDs - r.Client.Scan: %w", err)
	}

	return ids, nil
}

func (r *RedisRecordIndex) TimelineIDs(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.Client.ZRange(ctx, timelineKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("RedisRecordIndex - TimelineIDs - r.Client.ZRange: %w", err)
	}

	return parseIDs(members), nil
}

func (r *RedisRecordIndex) AddTimelineEntry(ctx context.Context, id uuid.UUID, score int64) error {
	err := r.Client.ZAdd(ctx, timelineKey, redis.Z{Score: float64(score), Member: id.String()}).Err()
	if err != nil {
		return fmt.Errorf("RedisRecordIndex - AddTimelineEntry - r.Client.ZAdd: %w", err)
	}

	return nil
}

func (r *RedisRecordIndex) RemoveTimelineEntry(ctx context.Context, id uuid.UUID) error {
	if err := r.Client.ZRem(ctx, timelineKey, id.String()).Err(); err != nil {
		return fmt.Errorf("RedisRecordIndex - RemoveTimelineEntry - r.Client.ZRem: %w", err)
	}

	return nil
}

func (r *RedisRecordIndex) SetCounters(ctx context.Context, c entity.Counters) error {
	err := r.Client.MSet(ctx, totalImagesKey, c.TotalImages, totalSizeKey, c.TotalSize).Err()
	if err != nil {
		return fmt.Errorf("RedisRecordIndex - SetCounters - r.Client.MSet: %w", err)
	}

	return nil
}

func parseIDs(members []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}

func counterValue(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}

	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected counter type %T", v)
	}

	return strconv.ParseInt(s, 10, 64)
}
