package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/service"
	"github.com/student-affairs/servicedesk-api/internal/utils"
)

// RequestHandler serves the request lifecycle routes.
type RequestHandler struct {
	service service.RequestService
	logger  zerolog.Logger
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(service service.RequestService, logger zerolog.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger.With().Str("component", "request_handler").Logger(),
	}
}

// List handles GET /requests. Students see their own requests, staff see all.
func (h *RequestHandler) List(c *fiber.Ctx) error {
	requests, err := h.service.List(c.UserContext(), principalFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "requests retrieved", requests)
}

// Create handles POST /requests.
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var payload dto.RequestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Create(c.UserContext(), principalFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendCreated(c, "request submitted", request)
}

// Detail handles GET /requests/:id with history and attachments.
func (h *RequestHandler) Detail(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	request, err := h.service.Detail(c.UserContext(), principalFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request retrieved", request)
}

// Transition handles PATCH /requests/:id: a staff status change.
func (h *RequestHandler) Transition(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RequestStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.service.Transition(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "request status updated", request)
}

func (h *RequestHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrRequestTypeInvalid),
		errors.Is(err, service.ErrDetailsEmpty):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStatusChangeForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "only staff can change request status")
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "request not found")
	default:
		h.logger.Error().Err(err).Msg("request operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
