package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// RequestStatus is the closed set of lifecycle states a request moves
// through. Business policy does not restrict the transition graph: any
// authorized actor may set any of the four values.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusApproved   RequestStatus = "APPROVED"
	StatusRejected   RequestStatus = "REJECTED"
)

// RequestStatuses lists every assignable status.
func RequestStatuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusInProgress, StatusApproved, StatusRejected}
}

// ParseRequestStatus normalizes and validates a status string.
func ParseRequestStatus(value string) (RequestStatus, error) {
	status := RequestStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid request status %q", value)
	}
	return status, nil
}

// Valid reports whether the status is one of the known constants.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s RequestStatus) String() string {
	return string(s)
}

// Request is the central entity: a categorized submission owned by a
// student, reviewed and transitioned by staff.
type Request struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	StudentID     uint             `gorm:"index;not null" json:"student_id"`
	Student       *User            `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	RequestTypeID *uint            `json:"request_type_id"`
	RequestType   *RequestType     `gorm:"constraint:OnDelete:SET NULL" json:"request_type,omitempty"`
	Details       string           `gorm:"type:text;not null" json:"details"`
	Status        RequestStatus    `gorm:"size:20;not null;default:PENDING" json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	History       []RequestHistory `gorm:"constraint:OnDelete:CASCADE" json:"history,omitempty"`
	Attachments   []Attachment     `gorm:"constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// RequestHistory is an append-only trail entry. Entries are created once
// at submission and once per status change, and never mutated.
type RequestHistory struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	RequestID uint              `gorm:"index;not null" json:"request_id"`
	UserID    *uint             `json:"user_id"`
	User      *User             `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`
	Action    string            `gorm:"size:255;not null" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	Timestamp time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`
}

// Attachment is a file bound to a request, stored in the configured blob
// store under a path keyed by the owning request.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RequestID    uint      `gorm:"index;not null" json:"request_id"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	ContentType  string    `gorm:"size:128" json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID *uint     `json:"uploaded_by_id"`
	UploadedBy   *User     `gorm:"constraint:OnDelete:SET NULL" json:"uploaded_by,omitempty"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
