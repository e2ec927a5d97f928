package storage

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// ImportArchive stores raw CSV uploads under date-partitioned keys.
type ImportArchive struct {
	svc    StorageService
	bucket string
	now    func() time.Time
}

func NewImportArchive(svc StorageService, bucket string) *ImportArchive {
	return &ImportArchive{svc: svc, bucket: bucket, now: time.Now}
}

// Archive uploads data and returns its object key. The stored content type
// is sniffed from the payload and must be one a CSV upload can carry.
func (a *ImportArchive) Archive(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := a.svc.ValidateFileSize(int64(len(data))); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	if err := a.svc.ValidateContentType(contentType); err != nil {
		return "", err
	}
	return a.svc.UploadFile(ctx, a.bucket, ImportFolder(a.now()), fileName, contentType, bytes.NewReader(data), int64(len(data)))
}

// DownloadURL returns a short-lived link to an archived upload.
func (a *ImportArchive) DownloadURL(ctx context.Context, key string) (string, error) {
	u, err := a.svc.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		return "", err
	}
	return u.URL, nil
}

// Ping checks the archive bucket for readiness probes.
func (a *ImportArchive) Ping(ctx context.Context) error {
	return a.svc.Ping(ctx, a.bucket)
}
