package persistent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/andreyxaxa/Photo-Ingest/pkg/s3client"
	"github.com/andreyxaxa/Photo-Ingest/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3BlobStorage struct {
	*s3client.S3Client
	bucket string
}

func NewS3BlobStorage(s3c *s3client.S3Client) *S3BlobStorage {
	return &S3BlobStorage{s3c, s3c.Bucket()}
}

func (r *S3BlobStorage) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          data,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("S3BlobStorage - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *S3BlobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("S3BlobStorage - Download - %s: %w", key, errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("S3BlobStorage - Download - r.Client.GetObject: %w", err)
	}

	return result.Body, nil
}

func (r *S3BlobStorage) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3BlobStorage - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}

func (r *S3BlobStorage) List(ctx context.Context, prefix string) ([]entity.ObjectInfo, error) {
	var objects []entity.ObjectInfo

	p := s3.NewListObjectsV2Paginator(r.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("S3BlobStorage - List - p.NextPage: %w", err)
		}

		for _, o := range page.Contents {
			objects = append(objects, entity.ObjectInfo{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}

	return objects, nil
}
