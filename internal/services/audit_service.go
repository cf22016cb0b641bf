package services

import (
	"context"

	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/models"
)

// AuditRepository is the persistence contract for room audits.
type AuditRepository interface {
	CreateAudit(ctx context.Context, audit *models.RoomAudit) error
	FetchAudits(ctx context.Context, branchID, roomNumber string) ([]models.RoomAudit, error)
}

type AuditService struct {
	repo   AuditRepository
	photos PhotoUploader
	log    *zap.Logger
}

func NewAuditService(repo AuditRepository, photos PhotoUploader, log *zap.Logger) *AuditService {
	return &AuditService{repo: repo, photos: photos, log: log}
}

// CreateAudit saves one walkthrough record. When a photo is attached the
// upload runs first; failure leaves PhotoUploaded false and the audit is
// saved anyway.
func (s *AuditService) CreateAudit(ctx context.Context, audit *models.RoomAudit, photo *PhotoUpload) error {
	if err := audit.Validate(); err != nil {
		return err
	}

	if photo != nil {
		audit.PhotoAttempted = true

		url, err := s.photos.Upload(ctx, photo.Reader, photo.Size, photo.ContentType, audit.BranchID, audit.RoomNumber)
		if err != nil {
			audit.PhotoUploaded = false
			s.log.Warn("audit photo upload failed, saving audit without photo",
				zap.String("branchId", audit.BranchID),
				zap.String("roomNumber", audit.RoomNumber),
				zap.Error(err))
		} else {
			audit.PhotoUploaded = true
			audit.ImageURL = url
		}
	}

	return s.repo.CreateAudit(ctx, audit)
}

func (s *AuditService) ListAudits(ctx context.Context, branchID, roomNumber string) ([]models.RoomAudit, error) {
	return s.repo.FetchAudits(ctx, branchID, roomNumber)
}
