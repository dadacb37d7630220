package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/observability"
	"github.com/student-affairs/servicedesk-api/internal/repository"
)

var (
	// ErrRequestNotFound covers both absent requests and requests outside
	// the caller's scope, so existence never leaks across tenants.
	ErrRequestNotFound = errors.New("request not found")
	// ErrInvalidStatus indicates a status value outside the closed enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrRequestTypeInvalid indicates the referenced request type does not exist.
	ErrRequestTypeInvalid = errors.New("request type does not exist")
	// ErrStatusChangeForbidden indicates the principal's role may not transition requests.
	ErrStatusChangeForbidden = errors.New("role may not change request status")
	// ErrDetailsEmpty indicates the request body carried no usable details text.
	ErrDetailsEmpty = errors.New("details must not be empty")
)

// Principal is the authenticated actor a handler resolved for the current
// request, with its role freshly derived from the profile table.
type Principal struct {
	ID   uint
	Role models.Role
}

// StatusNotifier is the best-effort side channel invoked after a committed
// status change. Implementations must tolerate failure; the lifecycle
// service logs and swallows any error so a notification fault never undoes
// or blocks a transition.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, request models.Request, status models.RequestStatus) error
}

// RequestService is the request lifecycle component: create, list, detail,
// and status transitions with history and notification side effects.
type RequestService interface {
	Create(ctx context.Context, principal Principal, payload dto.RequestCreateRequest) (dto.RequestResponse, error)
	Transition(ctx context.Context, principal Principal, id uint, payload dto.RequestStatusUpdateRequest) (dto.RequestResponse, error)
	List(ctx context.Context, principal Principal) ([]dto.RequestResponse, error)
	Detail(ctx context.Context, principal Principal, id uint) (dto.RequestDetailResponse, error)
}

type requestService struct {
	requests     repository.RequestRepository
	requestTypes repository.RequestTypeRepository
	notifier     StatusNotifier
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	tracer       trace.Tracer
}

// NewRequestService builds the lifecycle service.
func NewRequestService(requests repository.RequestRepository, requestTypes repository.RequestTypeRepository, notifier StatusNotifier, validate *validator.Validate, logger zerolog.Logger) RequestService {
	return &requestService{
		requests:     requests,
		requestTypes: requestTypes,
		notifier:     notifier,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "request_service").Logger(),
		tracer:       otel.Tracer("github.com/student-affairs/servicedesk-api/internal/service/request"),
	}
}

// scopeFor computes the read scope: students see their own requests, every
// other valid role sees all of them.
func scopeFor(principal Principal) repository.RequestScope {
	if principal.Role.IsStaff() {
		return repository.Unrestricted()
	}
	return repository.OwnedBy(principal.ID)
}

// Create persists a new pending request owned by the principal. Any
// authenticated principal may create; the owner is always the creator.
func (s *requestService) Create(ctx context.Context, principal Principal, payload dto.RequestCreateRequest) (dto.RequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestResponse{}, err
	}

	details := strings.TrimSpace(s.sanitizer.Sanitize(payload.Details))
	if details == "" {
		return dto.RequestResponse{}, ErrDetailsEmpty
	}

	requestType, err := s.requestTypes.GetByID(ctx, payload.RequestTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrRequestTypeInvalid
		}
		return dto.RequestResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "requests.create", trace.WithAttributes(
		attribute.Int("request.student_id", int(principal.ID)),
		attribute.Int("request.type_id", int(requestType.ID)),
	))
	defer span.End()

	request := models.Request{
		StudentID:     principal.ID,
		RequestTypeID: &requestType.ID,
		Details:       details,
		Status:        models.StatusPending,
	}

	if err := s.requests.Create(spanCtx, &request, principal.ID); err != nil {
		span.RecordError(err)
		return dto.RequestResponse{}, err
	}

	request.RequestType = &requestType

	s.logger.Info().Uint("request_id", request.ID).Uint("student_id", principal.ID).Msg("request submitted")

	return dto.NewRequestResponse(request), nil
}

// Transition moves a request to a new status. The status update and its
// history entry commit atomically; the notification is attempted only after
// the commit and its failure is deliberately swallowed so a notification
// fault can never block a successful transition.
func (s *requestService) Transition(ctx context.Context, principal Principal, id uint, payload dto.RequestStatusUpdateRequest) (dto.RequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestResponse{}, err
	}

	if !principal.Role.IsStaff() {
		return dto.RequestResponse{}, ErrStatusChangeForbidden
	}

	status, err := models.ParseRequestStatus(payload.Status)
	if err != nil {
		return dto.RequestResponse{}, ErrInvalidStatus
	}

	spanCtx, span := s.tracer.Start(ctx, "requests.transition", trace.WithAttributes(
		attribute.Int("request.id", int(id)),
		attribute.String("request.new_status", status.String()),
	))
	defer span.End()

	request, err := s.requests.UpdateStatus(spanCtx, id, status, principal.ID, scopeFor(principal))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrRequestNotFound
		}
		span.RecordError(err)
		return dto.RequestResponse{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyStatusChange(spanCtx, request, status); err != nil {
			// Deliberate: notification faults are logged and dropped, never
			// surfaced, so the committed transition stays successful.
			s.logger.Error().Err(err).Uint("request_id", request.ID).Msg("failed to notify request owner")
			observability.NotificationFailures().Inc()
		}
	}

	observability.Transitions().WithLabelValues(status.String()).Inc()

	s.logger.Info().
		Uint("request_id", request.ID).
		Uint("actor_id", principal.ID).
		Str("status", status.String()).
		Msg("request status changed")

	return dto.NewRequestResponse(request), nil
}

// List returns requests visible to the principal, newest first.
func (s *requestService) List(ctx context.Context, principal Principal) ([]dto.RequestResponse, error) {
	requests, err := s.requests.List(ctx, scopeFor(principal))
	if err != nil {
		return nil, err
	}
	return dto.NewRequestResponseSlice(requests), nil
}

// Detail returns one request with nested history and attachments, applying
// the same scope rule as Transition.
func (s *requestService) Detail(ctx context.Context, principal Principal, id uint) (dto.RequestDetailResponse, error) {
	request, err := s.requests.Detail(ctx, id, scopeFor(principal))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestDetailResponse{}, ErrRequestNotFound
		}
		return dto.RequestDetailResponse{}, err
	}
	return dto.NewRequestDetailResponse(request), nil
}
