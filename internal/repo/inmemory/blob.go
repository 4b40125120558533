package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
)

type blobObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// BlobStorage is a process-local object backend for tests and local runs.
type BlobStorage struct {
	mu      sync.RWMutex
	objects map[string]blobObject
	now     func() time.Time
}

func NewBlobStorage() *BlobStorage {
	return &BlobStorage{
		objects: make(map[string]blobObject),
		now:     time.Now,
	}
}

func (b *BlobStorage) Upload(_ context.Context, key string, data io.Reader, contentType string, _ int64) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("BlobStorage - Upload - io.ReadAll: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = blobObject{data: buf, contentType: contentType, lastModified: b.now()}

	return nil
}

func (b *BlobStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("BlobStorage - Download %s: %w", key, errs.ErrRecordNotFound)
	}

	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func (b *BlobStorage) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)

	return nil
}

func (b *BlobStorage) List(_ context.Context, prefix string) ([]entity.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []entity.ObjectInfo
	for k, o := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, entity.ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.lastModified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

// ContentType reports the stored content type of key, empty when absent.
func (b *BlobStorage) ContentType(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.objects[key].contentType
}

// Touch rewrites the modification time of key.
func (b *BlobStorage) Touch(key string, t time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o, ok := b.objects[key]; ok {
		o.lastModified = t
		b.objects[key] = o
	}
}
