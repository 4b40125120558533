package minioclient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
)

type MinioClient struct {
	connAttempts int
	connTimeout  time.Duration

	endpoint     string
	accessKey    string
	secretKey    string
	bucket       string
	useSSL       bool
	createBucket bool

	Client *minio.Client
}

func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, opts ...Option) (*MinioClient, error) {
	mc := &MinioClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		endpoint:     endpoint,
		accessKey:    accessKey,
		secretKey:    secretKey,
		bucket:       bucket,
	}

	for _, opt := range opts {
		opt(mc)
	}

	var err error
	for mc.connAttempts > 0 {
		err = mc.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("MinIO is trying to connect, attempts left: %d", mc.connAttempts)

		time.Sleep(mc.connTimeout)

		mc.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("MinioClient - New - connAttempts == 0: %w", err)
	}

	return mc, nil
}

func (m *MinioClient) Bucket() string {
	return m.bucket
}

func (m *MinioClient) connect(ctx context.Context) error {
	client, err := minio.New(m.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(m.accessKey, m.secretKey, ""),
		Secure: m.useSSL,
	})
	if err != nil {
		return fmt.Errorf("MinioClient - minio.New: %w", err)
	}

	exists, err := client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("MinioClient - client.BucketExists: %w", err)
	}

	if !exists {
		if !m.createBucket {
			return fmt.Errorf("MinioClient - bucket %s does not exist", m.bucket)
		}

		err = client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("MinioClient - client.MakeBucket: %w", err)
		}

		log.Printf("MinIO bucket %s created", m.bucket)
	}

	m.Client = client

	return nil
}
