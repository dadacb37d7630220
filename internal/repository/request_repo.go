package repository

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// RequestScope restricts which requests a principal may observe. A nil
// StudentID means unrestricted (staff view); otherwise only requests owned
// by that student resolve. Out-of-scope lookups surface as record-not-found
// so callers cannot probe for existence.
type RequestScope struct {
	StudentID *uint
}

// OwnedBy builds the scope for a student principal.
func OwnedBy(studentID uint) RequestScope {
	return RequestScope{StudentID: &studentID}
}

// Unrestricted builds the scope for staff principals.
func Unrestricted() RequestScope {
	return RequestScope{}
}

// RequestRepository handles persistence for the request lifecycle. Create
// and UpdateStatus each run inside a single transaction so the request
// mutation and its history entry commit or roll back together.
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request, actorID uint) error
	UpdateStatus(ctx context.Context, id uint, status models.RequestStatus, actorID uint, scope RequestScope) (models.Request, error)
	List(ctx context.Context, scope RequestScope) ([]models.Request, error)
	FindScoped(ctx context.Context, id uint, scope RequestScope) (models.Request, error)
	Detail(ctx context.Context, id uint, scope RequestScope) (models.Request, error)
	CountHistory(ctx context.Context, id uint) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository constructs a GORM-backed request repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (s RequestScope) apply(query *gorm.DB) *gorm.DB {
	if s.StudentID != nil {
		return query.Where("student_id = ?", *s.StudentID)
	}
	return query
}

// Create persists the request together with its "Submitted" history entry.
// Either both rows are visible afterwards or neither is.
func (r *requestRepository) Create(ctx context.Context, request *models.Request, actorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}

		entry := models.RequestHistory{
			RequestID: request.ID,
			UserID:    &actorID,
			Action:    "Submitted",
		}
		return tx.Create(&entry).Error
	})
}

// UpdateStatus transitions the request and appends the matching history
// entry in one transaction. The request must resolve inside the caller's
// scope. The returned request has its owner and type preloaded so callers
// can compose the notification message without a second round trip.
func (r *requestRepository) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus, actorID uint, scope RequestScope) (models.Request, error) {
	var request models.Request

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope.apply(tx.Preload("Student").Preload("RequestType")).First(&request, id).Error; err != nil {
			return err
		}

		previous := request.Status
		request.Status = status
		if err := tx.Model(&request).Update("status", status).Error; err != nil {
			return err
		}

		entry := models.RequestHistory{
			RequestID: request.ID,
			UserID:    &actorID,
			Action:    fmt.Sprintf("Status changed to %s", status),
			Metadata: datatypes.JSONMap{
				"from": previous.String(),
				"to":   status.String(),
			},
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return models.Request{}, err
	}

	return request, nil
}

func (r *requestRepository) List(ctx context.Context, scope RequestScope) ([]models.Request, error) {
	var requests []models.Request
	query := scope.apply(r.db.WithContext(ctx)).
		Preload("Student").
		Preload("RequestType").
		Order("created_at DESC")
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) FindScoped(ctx context.Context, id uint, scope RequestScope) (models.Request, error) {
	var request models.Request
	if err := scope.apply(r.db.WithContext(ctx)).First(&request, id).Error; err != nil {
		return models.Request{}, err
	}
	return request, nil
}

// Detail loads the request with its owner, type, attachments, and history
// ordered oldest first.
func (r *requestRepository) Detail(ctx context.Context, id uint, scope RequestScope) (models.Request, error) {
	var request models.Request
	query := scope.apply(r.db.WithContext(ctx)).
		Preload("Student.Profile").
		Preload("RequestType").
		Preload("Attachments").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Preload("History.User")
	if err := query.First(&request, id).Error; err != nil {
		return models.Request{}, err
	}
	return request, nil
}

func (r *requestRepository) CountHistory(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RequestHistory{}).Where("request_id = ?", id).Count(&count).Error
	return count, err
}
