package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"maintenance-app/tracking-service/internal/models"
)

// DefaultUploadTimeout bounds one photo upload. Timeouts surface as plain
// errors so the owning record is saved without the photo.
const DefaultUploadTimeout = 20 * time.Second

// PhotoService uploads issue and audit photos to object storage and
// returns the public URL.
type PhotoService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	timeout   time.Duration
}

func NewPhotoService(client *minio.Client, bucket, publicURL string, timeout time.Duration) *PhotoService {
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}

	return &PhotoService{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		timeout:   timeout,
	}
}

// Upload stores one photo under photos/<branch>/<place>/ and returns its
// URL. Every failure, timeout included, comes back as a transient error;
// callers record the failure on the parent record and keep going.
func (s *PhotoService) Upload(ctx context.Context, r io.Reader, size int64, contentType, branchID, place string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	objectKey := fmt.Sprintf("photos/%s/%s/%d_%s", branchID, place, time.Now().UnixNano(), uuid.NewString())

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: photo upload: %v", models.ErrTransient, err)
	}

	url := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(s.publicURL, "/"),
		s.bucket,
		objectKey,
	)

	return url, nil
}
