package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/repository"
	"github.com/student-affairs/servicedesk-api/pkg/storage"
)

var (
	// ErrAttachmentTooLarge indicates the upload exceeded the configured limit.
	ErrAttachmentTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrAttachmentTypeNotAllowed indicates the sniffed MIME type is not permitted.
	ErrAttachmentTypeNotAllowed = errors.New("file type not allowed")
	// ErrAttachmentMissing indicates no file part was supplied.
	ErrAttachmentMissing = errors.New("file is required")
)

var allowedAttachmentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"text/plain":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// AttachmentService validates and stores files bound to requests.
type AttachmentService interface {
	Upload(ctx context.Context, principal Principal, requestID uint, file *multipart.FileHeader) (dto.AttachmentResponse, error)
	ListByRequest(ctx context.Context, principal Principal, requestID uint) ([]dto.AttachmentResponse, error)
}

type attachmentService struct {
	attachments repository.AttachmentRepository
	requests    repository.RequestRepository
	store       storage.BlobStore
	logger      zerolog.Logger
	maxSize     int64
}

// NewAttachmentService builds the attachment service.
func NewAttachmentService(attachments repository.AttachmentRepository, requests repository.RequestRepository, store storage.BlobStore, maxSizeMB int, logger zerolog.Logger) AttachmentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &attachmentService{
		attachments: attachments,
		requests:    requests,
		store:       store,
		logger:      logger.With().Str("component", "attachment_service").Logger(),
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
	}
}

// Upload stores a file against a request inside the principal's scope.
// Students may only attach to their own requests; an out-of-scope request
// id reads as not found.
func (s *attachmentService) Upload(ctx context.Context, principal Principal, requestID uint, file *multipart.FileHeader) (dto.AttachmentResponse, error) {
	if file == nil {
		return dto.AttachmentResponse{}, ErrAttachmentMissing
	}
	if file.Size > s.maxSize {
		return dto.AttachmentResponse{}, ErrAttachmentTooLarge
	}

	request, err := s.requests.FindScoped(ctx, requestID, scopeFor(principal))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttachmentResponse{}, ErrRequestNotFound
		}
		return dto.AttachmentResponse{}, err
	}

	src, err := file.Open()
	if err != nil {
		return dto.AttachmentResponse{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return dto.AttachmentResponse{}, fmt.Errorf("failed to sniff file type: %w", err)
	}
	contentType := strings.Split(detected.String(), ";")[0]
	if _, ok := allowedAttachmentTypes[contentType]; !ok {
		return dto.AttachmentResponse{}, ErrAttachmentTypeNotAllowed
	}

	if _, err := src.Seek(0, 0); err != nil {
		return dto.AttachmentResponse{}, fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	name := sanitizeFileName(file.Filename)
	key := fmt.Sprintf("request_%d/%s_%s", request.ID, uuid.NewString()[:8], name)
	url, err := s.store.Save(ctx, key, src)
	if err != nil {
		return dto.AttachmentResponse{}, err
	}

	uploadedBy := principal.ID
	attachment := models.Attachment{
		RequestID:    request.ID,
		FileName:     name,
		FileURL:      url,
		ContentType:  contentType,
		SizeBytes:    file.Size,
		UploadedByID: &uploadedBy,
	}
	if err := s.attachments.Create(ctx, &attachment); err != nil {
		return dto.AttachmentResponse{}, err
	}

	s.logger.Info().Uint("request_id", request.ID).Str("file", name).Msg("attachment uploaded")

	return dto.NewAttachmentResponse(attachment), nil
}

// ListByRequest returns attachment metadata for a request in scope.
func (s *attachmentService) ListByRequest(ctx context.Context, principal Principal, requestID uint) ([]dto.AttachmentResponse, error) {
	if _, err := s.requests.FindScoped(ctx, requestID, scopeFor(principal)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	attachments, err := s.attachments.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return dto.NewAttachmentResponseSlice(attachments), nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, base)
	if base == "" || base == "." {
		base = "attachment"
	}
	return base
}
