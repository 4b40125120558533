package persistent

import (
	"context"
	"fmt"
	"io"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/minioclient"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/minio/minio-go/v7"
)

type MinioBlobStorage struct {
	*minioclient.MinioClient
	bucket string
}

func NewMinioBlobStorage(mc *minioclient.MinioClient) *MinioBlobStorage {
	return &MinioBlobStorage{mc, mc.Bucket()}
}

func (r *MinioBlobStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, r.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("MinioBlobStorage - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *MinioBlobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := r.Client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("MinioBlobStorage - Download - r.Client.GetObject: %w", err)
	}

	// GetObject is lazy, Stat surfaces a missing key before the caller reads.
	if _, err = obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("MinioBlobStorage - Download - %s: %w", key, errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("MinioBlobStorage - Download - obj.Stat: %w", err)
	}

	return obj, nil
}

func (r *MinioBlobStorage) Delete(ctx context.Context, key string) error {
	err := r.Client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("MinioBlobStorage - Delete - r.Client.RemoveObject: %w", err)
	}

	return nil
}

func (r *MinioBlobStorage) List(ctx context.Context, prefix string) ([]entity.ObjectInfo, error) {
	var objects []entity.ObjectInfo

	for o := range r.Client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if o.Err != nil {
			return nil, fmt.Errorf("MinioBlobStorage - List - r.Client.ListObjects: %w", o.Err)
		}

		objects = append(objects, entity.ObjectInfo{
			Key:          o.Key,
			Size:         o.Size,
			LastModified: o.LastModified,
		})
	}

	return objects, nil
}
