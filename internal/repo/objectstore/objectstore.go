package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/internal/repo"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	ImagesPrefix     = "images/"
	ThumbnailsPrefix = "thumbnails/"

	fileNamePrefix = "doubao-"
)

// ObjectStore names and writes uploaded payloads into a blob backend.
type ObjectStore struct {
	blob      repo.BlobStorage
	publicURL string
	location  *time.Location
	now       func() time.Time
	newID     func() uuid.UUID
}

func New(blob repo.BlobStorage, publicURL string, opts ...Option) *ObjectStore {
	s := &ObjectStore{
		blob:      blob,
		publicURL: strings.TrimRight(publicURL, "/"),
		location:  time.Local,
		now:       time.Now,
		newID:     uuid.New,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put stores data under images/<yyyy>/<MM>/<dd>/doubao-<uuid><ext>. Failures are
// not retried.
func (s *ObjectStore) Put(ctx context.Context, data []byte, originalName, mimeType string) (*entity.StoredObject, error) {
	id := s.newID()
	fileName := fileNamePrefix + id.String() + path.Ext(originalName)
	storagePath := ImagesPrefix + s.now().In(s.location).Format("2006/01/02") + "/" + fileName

	err := s.blob.Upload(ctx, storagePath, bytes.NewReader(data), mimeType, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Put - s.blob.Upload: %w: %w", errs.ErrStorage, err)
	}

	return &entity.StoredObject{
		ID:           id,
		URL:          s.URL(storagePath),
		StoragePath:  storagePath,
		FileName:     fileName,
		OriginalName: originalName,
		Size:         int64(len(data)),
		MimeType:     mimeType,
	}, nil
}

// PutAt writes a derived object, such as a thumbnail, under an explicit key.
func (s *ObjectStore) PutAt(ctx context.Context, key string, data []byte, mimeType string) error {
	err := s.blob.Upload(ctx, key, bytes.NewReader(data), mimeType, int64(len(data)))
	if err != nil {
		return fmt.Errorf("ObjectStore - PutAt - s.blob.Upload: %w: %w", errs.ErrStorage, err)
	}

	return nil
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := s.blob.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Get - s.blob.Download: %w: %w", errs.ErrStorage, err)
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - Get - io.ReadAll: %w: %w", errs.ErrStorage, err)
	}

	return b, nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.blob.Delete(ctx, key); err != nil {
		return fmt.Errorf("ObjectStore - Delete - s.blob.Delete: %w: %w", errs.ErrStorage, err)
	}

	return nil
}

func (s *ObjectStore) List(ctx context.Context, prefix string) ([]entity.ObjectInfo, error) {
	objects, err := s.blob.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("ObjectStore - List - s.blob.List: %w: %w", errs.ErrStorage, err)
	}

	return objects, nil
}

func (s *ObjectStore) URL(key string) string {
	return s.publicURL + "/" + key
}

// ThumbnailKey maps an image storage path to its derived thumbnail key.
func ThumbnailKey(storagePath string) string {
	return ThumbnailsPrefix + storagePath
}
