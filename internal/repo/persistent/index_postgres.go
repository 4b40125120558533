package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/postgres"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Tables
	imagesTable   = "images"
	timelineTable = "images_timeline"
	countersTable = "image_counters"

	// Columns
	idColumn         = "id"
	recordColumn     = "record"
	sizeColumn       = "size"
	uploadTimeColumn = "upload_time"
	imageIDColumn    = "image_id"
	scoreColumn      = "score"
	nameColumn       = "name"
	valueColumn      = "value"

	// Counter rows
	totalImagesCounter = "total_images"
	totalSizeCounter   = "total_size"
)

// PostgresRecordIndex maps the primary store, the timeline and the counters onto
// three tables. Every step runs as its own statement.
type PostgresRecordIndex struct {
	*postgres.Postgres
}

func NewPostgresRecordIndex(pg *postgres.Postgres) *PostgresRecordIndex {
	return &PostgresRecordIndex{pg}
}

func (r *PostgresRecordIndex) Save(ctx context.Context, rec *entity.ImageRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - json.Marshal: %w", err)
	}

	sql, args, err := r.Builder.
		Insert(imagesTable).
		Columns(idColumn, recordColumn, sizeColumn, uploadTimeColumn).
		Values(rec.ID, string(b), rec.Size, rec.UploadTime).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	if _, err = executor.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - executor.Exec: %w", err)
	}

	if err = r.AddTimelineEntry(ctx, rec.ID, rec.Score()); err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - r.AddTimelineEntry: %w", err)
	}

	if err = r.addCounter(ctx, totalImagesCounter, 1); err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - r.addCounter: %w", err)
	}

	if err = r.addCounter(ctx, totalSizeCounter, rec.Size); err != nil {
		return fmt.Errorf("PostgresRecordIndex - Save - r.addCounter: %w", err)
	}

	return nil
}

func (r *PostgresRecordIndex) Delete(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	sql, args, err := r.Builder.
		Delete(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		Suffix("RETURNING " + recordColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var b []byte
	err = executor.QueryRow(ctx, sql, args...).Scan(&b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("PostgresRecordIndex - Delete: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - executor.QueryRow: %w", err)
	}

	var rec entity.ImageRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - json.Unmarshal: %w", err)
	}

	if err = r.RemoveTimelineEntry(ctx, id); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - r.RemoveTimelineEntry: %w", err)
	}

	if err = r.addCounter(ctx, totalImagesCounter, -1); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - r.addCounter: %w", err)
	}

	if err = r.addCounter(ctx, totalSizeCounter, -rec.Size); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Delete - r.addCounter: %w", err)
	}

	return &rec, nil
}

func (r *PostgresRecordIndex) GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageRecord, error) {
	sql, args, err := r.Builder.
		Select(recordColumn).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var b []byte
	err = executor.QueryRow(ctx, sql, args...).Scan(&b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("PostgresRecordIndex - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("PostgresRecordIndex - GetByID - executor.QueryRow: %w", err)
	}

	var rec entity.ImageRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - GetByID - json.Unmarshal: %w", err)
	}

	return &rec, nil
}

func (r *PostgresRecordIndex) Range(ctx context.Context, opts entity.ListOptions) ([]uuid.UUID, error) {
	order := scoreColumn + " DESC"
	if opts.Order == entity.OrderAsc {
		order = scoreColumn + " ASC"
	}

	sql, args, err := r.Builder.
		Select(imageIDColumn).
		From(timelineTable).
		OrderBy(order).
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Range - r.Builder.ToSql: %w", err)
	}

	ids, err := r.queryIDs(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - Range - r.queryIDs: %w", err)
	}

	return ids, nil
}

func (r *PostgresRecordIndex) GetMany(ctx context.Context, ids []uuid.UUID) ([]*entity.ImageRecord, error) {
	if len(ids) == 0 {
		return []*entity.ImageRecord{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	sql, args, err := r.Builder.
		Select(idColumn, recordColumn).
		From(imagesTable).
		Where(squirrel.Eq{idColumn: keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - GetMany - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - GetMany - executor.Query: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]*entity.ImageRecord, len(ids))
	for rows.Next() {
		var (
			id uuid.UUID
			b  []byte
		)
		if err = rows.Scan(&id, &b); err != nil {
			return nil, fmt.Errorf("PostgresRecordIndex - GetMany - rows.Scan: %w", err)
		}

		var rec entity.ImageRecord
		if err = json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("PostgresRecordIndex - GetMany - json.Unmarshal: %w", err)
		}
		found[id] = &rec
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - GetMany - rows.Err: %w", err)
	}

	// порядок как во входном списке
	out := make([]*entity.ImageRecord, 0, len(found))
	for _, id := range ids {
		if rec, ok := found[id]; ok {
			out = append(out, rec)
		}
	}

	return out, nil
}

func (r *PostgresRecordIndex) Counters(ctx context.Context) (entity.Counters, error) {
	sql, args, err := r.Builder.
		Select(nameColumn, valueColumn).
		From(countersTable).
		ToSql()
	if err != nil {
		return entity.Counters{}, fmt.Errorf("PostgresRecordIndex - Counters - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return entity.Counters{}, fmt.Errorf("PostgresRecordIndex - Counters - executor.Query: %w", err)
	}
	defer rows.Close()

	var c entity.Counters
	for rows.Next() {
		var (
			name  string
			value int64
		)
		if err = rows.Scan(&name, &value); err != nil {
			return entity.Counters{}, fmt.Errorf("PostgresRecordIndex - Counters - rows.Scan: %w", err)
		}

		switch name {
		case totalImagesCounter:
			c.TotalImages = value
		case totalSizeCounter:
			c.TotalSize = value
		}
	}
	if err = rows.Err(); err != nil {
		return entity.Counters{}, fmt.Errorf("PostgresRecordIndex - Counters - rows.Err: %w", err)
	}

	return c, nil
}

func (r *PostgresRecordIndex) RecordIDs(ctx context.Context) ([]uuid.UUID, error) {
	sql, args, err := r.Builder.Select(idColumn).From(imagesTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - RecordIDs - r.Builder.ToSql: %w", err)
	}

	ids, err := r.queryIDs(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - RecordIDs - r.queryIDs: %w", err)
	}

	return ids, nil
}

func (r *PostgresRecordIndex) TimelineIDs(ctx context.Context) ([]uuid.UUID, error) {
	sql, args, err := r.Builder.Select(imageIDColumn).From(timelineTable).OrderBy(scoreColumn).ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - TimelineIDs - r.Builder.ToSql: %w", err)
	}

	ids, err := r.queryIDs(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("PostgresRecordIndex - TimelineIDs - r.queryIDs: %w", err)
	}

	return ids, nil
}

func (r *PostgresRecordIndex) AddTimelineEntry(ctx context.Context, id uuid.UUID, score int64) error {
	sql, args, err := r.Builder.
		Insert(timelineTable).
		Columns(imageIDColumn, scoreColumn).
		Values(id, score).
		Suffix("ON CONFLICT (" + imageIDColumn + ") DO UPDATE SET " + scoreColumn + " = EXCLUDED." + scoreColumn).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostgresRecordIndex - AddTimelineEntry - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	if _, err = executor.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("PostgresRecordIndex - AddTimelineEntry - executor.Exec: %w", err)
	}

	return nil
}

func (r *PostgresRecordIndex) RemoveTimelineEntry(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(timelineTable).
		Where(squirrel.Eq{imageIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostgresRecordIndex - RemoveTimelineEntry - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	if _, err = executor.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("PostgresRecordIndex - RemoveTimelineEntry - executor.Exec: %w", err)
	}

	return nil
}

// SetCounters replaces both counters in one transaction.
func (r *PostgresRecordIndex) SetCounters(ctx context.Context, c entity.Counters) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		for name, value := range map[string]int64{
			totalImagesCounter: c.TotalImages,
			totalSizeCounter:   c.TotalSize,
		} {
			sql, args, err := r.Builder.
				Update(countersTable).
				Set(valueColumn, value).
				Where(squirrel.Eq{nameColumn: name}).
				ToSql()
			if err != nil {
				return fmt.Errorf("PostgresRecordIndex - SetCounters - r.Builder.ToSql: %w", err)
			}

			if _, err = r.GetExecutor(ctx).Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("PostgresRecordIndex - SetCounters - executor.Exec: %w", err)
			}
		}

		return nil
	})
}

func (r *PostgresRecordIndex) addCounter(ctx context.Context, name string, delta int64) error {
	sql, args, err := r.Builder.
		Update(countersTable).
		Set(valueColumn, squirrel.Expr(valueColumn+" + ?", delta)).
		Where(squirrel.Eq{nameColumn: name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostgresRecordIndex - addCounter - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	if _, err = executor.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("PostgresRecordIndex - addCounter - executor.Exec: %w", err)
	}

	return nil
}

func (r *PostgresRecordIndex) queryIDs(ctx context.Context, sql string, args ...any) ([]uuid.UUID, error) {
	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("executor.Query: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return ids, nil
}
