package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/repository"
)

var (
	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrRequestTypeNotFound indicates the requested request type does not exist.
	ErrRequestTypeNotFound = errors.New("request type not found")
)

// CatalogService covers the reference data: categories and request types.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id uint) (dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, payload dto.CategoryCreateRequest) (dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uint, payload dto.CategoryUpdateRequest) (dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error

	ListRequestTypes(ctx context.Context, categoryID *uint) ([]dto.RequestTypeResponse, error)
	GetRequestType(ctx context.Context, id uint) (dto.RequestTypeResponse, error)
	CreateRequestType(ctx context.Context, payload dto.RequestTypeCreateRequest) (dto.RequestTypeResponse, error)
	UpdateRequestType(ctx context.Context, id uint, payload dto.RequestTypeUpdateRequest) (dto.RequestTypeResponse, error)
	DeleteRequestType(ctx context.Context, id uint) error
}

type catalogService struct {
	categories   repository.CategoryRepository
	requestTypes repository.RequestTypeRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewCatalogService builds the catalog service.
func NewCatalogService(categories repository.CategoryRepository, requestTypes repository.RequestTypeRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		categories:   categories,
		requestTypes: requestTypes,
		validator:    validate,
		logger:       logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryResponseSlice(categories), nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uint) (dto.CategoryResponse, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}
	return dto.NewCategoryResponse(category), nil
}

func (s *catalogService) CreateCategory(ctx context.Context, payload dto.CategoryCreateRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.Category{
		Name:        payload.Name,
		Description: payload.Description,
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	s.logger.Info().Uint("category_id", category.ID).Msg("category created")

	return dto.NewCategoryResponse(category), nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uint, payload dto.CategoryUpdateRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, ErrCategoryNotFound
		}
		return dto.CategoryResponse{}, err
	}

	if payload.Name != nil {
		category.Name = *payload.Name
	}
	if payload.Description != nil {
		category.Description = *payload.Description
	}

	if err := s.categories.Update(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	return dto.NewCategoryResponse(category), nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.logger.Info().Uint("category_id", id).Msg("category deleted")
	return nil
}

func (s *catalogService) ListRequestTypes(ctx context.Context, categoryID *uint) ([]dto.RequestTypeResponse, error) {
	requestTypes, err := s.requestTypes.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return dto.NewRequestTypeResponseSlice(requestTypes), nil
}

func (s *catalogService) GetRequestType(ctx context.Context, id uint) (dto.RequestTypeResponse, error) {
	requestType, err := s.requestTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestTypeResponse{}, ErrRequestTypeNotFound
		}
		return dto.RequestTypeResponse{}, err
	}
	return dto.NewRequestTypeResponse(requestType), nil
}

func (s *catalogService) CreateRequestType(ctx context.Context, payload dto.RequestTypeCreateRequest) (dto.RequestTypeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestTypeResponse{}, err
	}

	if _, err := s.categories.GetByID(ctx, payload.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestTypeResponse{}, ErrCategoryNotFound
		}
		return dto.RequestTypeResponse{}, err
	}

	requestType := models.RequestType{
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Description: payload.Description,
	}
	if err := s.requestTypes.Create(ctx, &requestType); err != nil {
		return dto.RequestTypeResponse{}, err
	}

	s.logger.Info().Uint("request_type_id", requestType.ID).Msg("request type created")

	return dto.NewRequestTypeResponse(requestType), nil
}

func (s *catalogService) UpdateRequestType(ctx context.Context, id uint, payload dto.RequestTypeUpdateRequest) (dto.RequestTypeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestTypeResponse{}, err
	}

	requestType, err := s.requestTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestTypeResponse{}, ErrRequestTypeNotFound
		}
		return dto.RequestTypeResponse{}, err
	}

	if payload.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *payload.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.RequestTypeResponse{}, ErrCategoryNotFound
			}
			return dto.RequestTypeResponse{}, err
		}
		requestType.CategoryID = *payload.CategoryID
	}
	if payload.Name != nil {
		requestType.Name = *payload.Name
	}
	if payload.Description != nil {
		requestType.Description = *payload.Description
	}

	if err := s.requestTypes.Update(ctx, &requestType); err != nil {
		return dto.RequestTypeResponse{}, err
	}

	return dto.NewRequestTypeResponse(requestType), nil
}

func (s *catalogService) DeleteRequestType(ctx context.Context, id uint) error {
	if err := s.requestTypes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestTypeNotFound
		}
		return err
	}

	s.logger.Info().Uint("request_type_id", id).Msg("request type deleted")
	return nil
}
