package dto

import "github.com/student-affairs/servicedesk-api/internal/models"

// CategoryCreateRequest creates a catalog category.
type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryUpdateRequest updates an existing category.
type CategoryUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CategoryResponse is the serialized category.
type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewCategoryResponse converts a category model into a DTO.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}

// NewCategoryResponseSlice converts categories into DTOs.
func NewCategoryResponseSlice(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryResponse(category))
	}
	return out
}

// RequestTypeCreateRequest creates a request type under a category.
type RequestTypeCreateRequest struct {
	CategoryID  uint   `json:"category" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// RequestTypeUpdateRequest updates a request type.
type RequestTypeUpdateRequest struct {
	CategoryID  *uint   `json:"category" validate:"omitempty"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// RequestTypeResponse is the serialized request type.
type RequestTypeResponse struct {
	ID          uint   `json:"id"`
	CategoryID  uint   `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewRequestTypeResponse converts a request type model into a DTO.
func NewRequestTypeResponse(requestType models.RequestType) RequestTypeResponse {
	return RequestTypeResponse{
		ID:          requestType.ID,
		CategoryID:  requestType.CategoryID,
		Name:        requestType.Name,
		Description: requestType.Description,
	}
}

// NewRequestTypeResponseSlice converts request types into DTOs.
func NewRequestTypeResponseSlice(requestTypes []models.RequestType) []RequestTypeResponse {
	out := make([]RequestTypeResponse, 0, len(requestTypes))
	for _, requestType := range requestTypes {
		out = append(out, NewRequestTypeResponse(requestType))
	}
	return out
}
