package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/student-affairs/servicedesk-api/internal/service"
	"github.com/student-affairs/servicedesk-api/internal/utils"
)

// AttachmentHandler serves the attachment upload and listing routes.
type AttachmentHandler struct {
	service service.AttachmentService
	logger  zerolog.Logger
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(service service.AttachmentService, logger zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		service: service,
		logger:  logger.With().Str("component", "attachment_handler").Logger(),
	}
}

// Upload handles POST /attachments: a multipart form with a "file" part and a
// "request" field naming the target request.
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	requestID, err := parseQueryUint(c.FormValue("request"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	attachment, err := h.service.Upload(c.UserContext(), principalFromContext(c), requestID, file)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendCreated(c, "attachment uploaded", attachment)
}

// List handles GET /attachments?request={id}.
func (h *AttachmentHandler) List(c *fiber.Ctx) error {
	requestID, err := parseQueryUint(c.Query("request"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	attachments, err := h.service.ListByRequest(c.UserContext(), principalFromContext(c), requestID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "attachments retrieved", attachments)
}

func (h *AttachmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAttachmentMissing):
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	case errors.Is(err, service.ErrAttachmentTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	case errors.Is(err, service.ErrAttachmentTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type is not allowed")
	case errors.Is(err, service.ErrRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "request not found")
	default:
		h.logger.Error().Err(err).Msg("attachment operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
