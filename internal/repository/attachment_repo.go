package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// AttachmentRepository handles persistence for attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByRequest(ctx context.Context, requestID uint) ([]models.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository constructs a GORM-backed attachment repository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) ListByRequest(ctx context.Context, requestID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("uploaded_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
