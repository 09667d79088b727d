package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig configures S3-compatible object storage.
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Bucket stores images in an S3-compatible bucket via the MinIO client.
type Bucket struct {
	client *minio.Client
	bucket string
}

// NewBucket connects to the endpoint and ensures the bucket exists.
func NewBucket(ctx context.Context, cfg BucketConfig) (*Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Bucket{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the image with an image/png content type.
func (b *Bucket) Put(ctx context.Context, key string, image []byte) (Object, error) {
	_, err := b.client.PutObject(ctx, b.bucket, key,
		bytes.NewReader(image), int64(len(image)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return Object{}, fmt.Errorf("upload %q: %w", key, err)
	}
	return Object{
		Key: key,
		URL: fmt.Sprintf("s3://%s/%s", b.bucket, key),
	}, nil
}
