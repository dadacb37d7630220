package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/service"
	"github.com/student-affairs/servicedesk-api/internal/utils"
)

// CatalogHandler serves the category and request-type catalog routes.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "categories retrieved", categories)
}

// GetCategory handles GET /categories/:id.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "category retrieved", category)
}

// CreateCategory handles POST /categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.service.CreateCategory(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendCreated(c, "category created", category)
}

// UpdateCategory handles PATCH /categories/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CategoryUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	category, err := h.service.UpdateCategory(c.UserContext(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "category updated", category)
}

// DeleteCategory handles DELETE /categories/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "category deleted", nil)
}

// ListRequestTypes handles GET /request-types with an optional ?category filter.
func (h *CatalogHandler) ListRequestTypes(c *fiber.Ctx) error {
	// Non-numeric filter values are ignored rather than rejected.
	var categoryID *uint
	if raw := c.Query("category"); raw != "" {
		if id, err := parseQueryUint(raw); err == nil {
			categoryID = &id
		}
	}

	types, err := h.service.ListRequestTypes(c.UserContext(), categoryID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request types retrieved", types)
}

// GetRequestType handles GET /request-types/:id.
func (h *CatalogHandler) GetRequestType(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rt, err := h.service.GetRequestType(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request type retrieved", rt)
}

// CreateRequestType handles POST /request-types.
func (h *CatalogHandler) CreateRequestType(c *fiber.Ctx) error {
	var payload dto.RequestTypeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rt, err := h.service.CreateRequestType(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendCreated(c, "request type created", rt)
}

// UpdateRequestType handles PATCH /request-types/:id.
func (h *CatalogHandler) UpdateRequestType(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequestTypeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rt, err := h.service.UpdateRequestType(c.UserContext(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request type updated", rt)
}

// DeleteRequestType handles DELETE /request-types/:id.
func (h *CatalogHandler) DeleteRequestType(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteRequestType(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request type deleted", nil)
}

func (h *CatalogHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCategoryNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "category not found")
	case errors.Is(err, service.ErrRequestTypeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "request type not found")
	default:
		h.logger.Error().Err(err).Msg("catalog operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
