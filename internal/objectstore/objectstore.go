package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"codeberg.org/studyhall/server/internal/config"
)

var ErrValidation = errors.New("object key and body are required")

// archives raw uploads in an S3 compatible bucket
type Archive struct {
	client *minio.Client
	bucket string

	ensureOnce sync.Once
	ensureErr  error
}

// NewArchive connects to the configured bucket. region is fixed so that no
// bucket location lookup happens before the first request.
func NewArchive(cfg config.StorageConfig) (*Archive, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "us-east-1",
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &Archive{
		client: client,
		bucket: strings.TrimSpace(cfg.Bucket),
	}, nil
}

// ObjectKey is where an upload is archived: uploads/<user>/<file><ext>
func ObjectKey(userID, fileID, filename string) string {
	return path.Join("uploads", userID, fileID+strings.ToLower(path.Ext(filename)))
}

func (a *Archive) EnsureBucket(ctx context.Context) error {
	a.ensureOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.ensureErr = err
			return
		}

		if exists {
			return
		}

		a.ensureErr = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	})

	if a.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", a.bucket, a.ensureErr)
	}

	return nil
}

func (a *Archive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" || len(data) == 0 {
		return ErrValidation
	}

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object to s3: %w", err)
	}

	return nil
}

func (a *Archive) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}
