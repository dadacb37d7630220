package dto

import (
	"time"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// AttachmentResponse is the serialized attachment metadata.
type AttachmentResponse struct {
	ID          uint      `json:"id"`
	RequestID   uint      `json:"request_id"`
	FileName    string    `json:"file_name"`
	FileURL     string    `json:"file"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// NewAttachmentResponse converts an attachment model into a DTO.
func NewAttachmentResponse(attachment models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          attachment.ID,
		RequestID:   attachment.RequestID,
		FileName:    attachment.FileName,
		FileURL:     attachment.FileURL,
		ContentType: attachment.ContentType,
		SizeBytes:   attachment.SizeBytes,
		UploadedAt:  attachment.UploadedAt,
	}
}

// NewAttachmentResponseSlice converts attachments into DTOs.
func NewAttachmentResponseSlice(attachments []models.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		out = append(out, NewAttachmentResponse(attachment))
	}
	return out
}
