package models

import "time"

// Notification is a message addressed to a single user, created as a side
// effect of a request status change. Mutated only by mark-as-read.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	RequestID *uint     `json:"request_id"`
	Request   *Request  `gorm:"constraint:OnDelete:CASCADE" json:"request,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
