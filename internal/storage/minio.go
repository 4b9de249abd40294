package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const presignExpiry = 7 * 24 * time.Hour

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL, when set, is joined with the object key instead of
	// presigning a GET.
	PublicURL string
}

type MinIO struct {
	client *minio.Client
	bucket string
	public string
}

// NewMinIO connects and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIO{client: client, bucket: cfg.Bucket, public: strings.TrimSuffix(cfg.PublicURL, "/")}, nil
}

func (m *MinIO) Upload(ctx context.Context, owner uuid.UUID, name, contentType string, r io.Reader, size int64) (FileRef, error) {
	ct, err := CheckUpload(name, contentType, size)
	if err != nil {
		return FileRef{}, err
	}

	key := ObjectKey(owner, ct)
	_, err = m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  ct,
		UserMetadata: map[string]string{"original-name": name},
	})
	if err != nil {
		return FileRef{}, apperrors.Transport("upload", err)
	}

	url, err := m.url(ctx, key)
	if err != nil {
		return FileRef{}, apperrors.Transport("presign", err)
	}
	return FileRef{Key: key, URL: url, Name: name, ContentType: ct, Size: size}, nil
}

func (m *MinIO) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if strings.Contains(key, "..") {
		return nil, apperrors.Validation("key", "invalid object key")
	}
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperrors.NotFound("file", key)
		}
		return nil, apperrors.Transport("stat object", err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Transport("get object", err)
	}
	return obj, nil
}

func (m *MinIO) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucket)
	return err
}

func (m *MinIO) url(ctx context.Context, key string) (string, error) {
	if m.public != "" {
		return m.public + "/" + m.bucket + "/" + key, nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, presignExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
