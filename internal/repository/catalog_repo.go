package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// CategoryRepository handles persistence for catalog categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs a GORM-backed category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RequestTypeRepository handles persistence for request types.
type RequestTypeRepository interface {
	List(ctx context.Context, categoryID *uint) ([]models.RequestType, error)
	GetByID(ctx context.Context, id uint) (models.RequestType, error)
	Create(ctx context.Context, requestType *models.RequestType) error
	Update(ctx context.Context, requestType *models.RequestType) error
	Delete(ctx context.Context, id uint) error
}

type requestTypeRepository struct {
	db *gorm.DB
}

// NewRequestTypeRepository constructs a GORM-backed request type repository.
func NewRequestTypeRepository(db *gorm.DB) RequestTypeRepository {
	return &requestTypeRepository{db: db}
}

// List returns request types, optionally filtered by owning category. A nil
// filter means no filtering.
func (r *requestTypeRepository) List(ctx context.Context, categoryID *uint) ([]models.RequestType, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var requestTypes []models.RequestType
	if err := query.Find(&requestTypes).Error; err != nil {
		return nil, err
	}
	return requestTypes, nil
}

func (r *requestTypeRepository) GetByID(ctx context.Context, id uint) (models.RequestType, error) {
	var requestType models.RequestType
	if err := r.db.WithContext(ctx).First(&requestType, id).Error; err != nil {
		return models.RequestType{}, err
	}
	return requestType, nil
}

func (r *requestTypeRepository) Create(ctx context.Context, requestType *models.RequestType) error {
	return r.db.WithContext(ctx).Create(requestType).Error
}

func (r *requestTypeRepository) Update(ctx context.Context, requestType *models.RequestType) error {
	return r.db.WithContext(ctx).Save(requestType).Error
}

// Delete removes the type and clears the reference on requests that point
// at it, so existing requests keep their history with a null type.
func (r *requestTypeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Request{}).
			Where("request_type_id = ?", id).
			Update("request_type_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.RequestType{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
