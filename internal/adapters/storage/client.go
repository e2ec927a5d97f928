package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DownloadTTL bounds how long a presigned link to an archived upload works.
const DownloadTTL = 15 * time.Minute

// ErrStorageDisabled is returned by NewMinIOService without an endpoint.
var ErrStorageDisabled = errors.New("object storage is not configured")

// MinIOService is the StorageService backed by an S3-compatible MinIO server.
type MinIOService struct {
	client      *minio.Client
	maxFileSize int64
	now         func() time.Time
}

// NewMinIOService dials nothing; minio.New only validates the endpoint.
// maxFileSize bounds what ValidateFileSize accepts.
func NewMinIOService(cfg Config, maxFileSize int64) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, ErrStorageDisabled
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	}
	client, err := minio.New(cfg.GetMinIOEndpoint(), opts)
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", cfg.GetMinIOEndpoint(), err)
	}
	return &MinIOService{client: client, maxFileSize: maxFileSize, now: time.Now}, nil
}

func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		return fmt.Errorf("lookup bucket %s: %w", bucket, err)
	case ok:
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// Ping fails when the bucket is unreachable or missing.
func (s *MinIOService) Ping(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s is missing", bucket)
	}
	return nil
}

func (s *MinIOService) GenerateDownloadURL(ctx context.Context, bucket, fileKey string) (*PresignedURL, error) {
	issued := s.now()
	u, err := s.client.PresignedGetObject(ctx, bucket, fileKey, DownloadTTL, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", fileKey, err)
	}
	return &PresignedURL{URL: u.String(), FileKey: fileKey, ExpiresAt: issued.Add(DownloadTTL)}, nil
}

// UploadFile stores reader under folder with a collision-free name and
// returns the object key.
func (s *MinIOService) UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	key := objectKey(folder, fileName, uuid.New())
	if _, err := s.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// objectKey keeps the client's base name and extension and appends the first
// eight characters of id, e.g. "imports/2025/06/01/leads_1a2b3c4d.csv".
func objectKey(folder, fileName string, id uuid.UUID) string {
	name := path.Base(filepath.ToSlash(fileName))
	if name == "." || name == "/" {
		name = "upload.csv"
	}
	ext := path.Ext(name)
	return path.Join(folder, strings.TrimSuffix(name, ext)+"_"+id.String()[:8]+ext)
}
