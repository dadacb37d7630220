package dto

import (
	"time"

	"github.com/student-affairs/servicedesk-api/internal/models"
)

// RequestCreateRequest submits a new service request. The owning student is
// always the authenticated principal.
type RequestCreateRequest struct {
	RequestTypeID uint   `json:"request_type_id" validate:"required"`
	Details       string `json:"details" validate:"required,min=1,max=10000"`
}

// RequestStatusUpdateRequest transitions a request to a new status.
type RequestStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// RequestOwnerResponse is the compact owner shape shown in list views.
type RequestOwnerResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RequestTypeNameResponse is the compact type shape shown in list views.
type RequestTypeNameResponse struct {
	Name string `json:"name"`
}

// RequestResponse is the list representation of a request.
type RequestResponse struct {
	ID          uint                     `json:"id"`
	User        *RequestOwnerResponse    `json:"user,omitempty"`
	RequestType *RequestTypeNameResponse `json:"request_type,omitempty"`
	Details     string                   `json:"details"`
	Status      models.RequestStatus     `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// NewRequestResponse converts a request model into its list DTO.
func NewRequestResponse(request models.Request) RequestResponse {
	response := RequestResponse{
		ID:        request.ID,
		Details:   request.Details,
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
	if request.Student != nil {
		response.User = &RequestOwnerResponse{
			FirstName: request.Student.FirstName,
			LastName:  request.Student.LastName,
		}
	}
	if request.RequestType != nil {
		response.RequestType = &RequestTypeNameResponse{Name: request.RequestType.Name}
	}
	return response
}

// NewRequestResponseSlice converts requests into list DTOs.
func NewRequestResponseSlice(requests []models.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewRequestResponse(request))
	}
	return out
}

// RequestHistoryResponse is a single trail entry, ordered oldest first.
type RequestHistoryResponse struct {
	User      string            `json:"user"`
	Action    string            `json:"action"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewRequestHistoryResponse converts a history model into a DTO.
func NewRequestHistoryResponse(entry models.RequestHistory) RequestHistoryResponse {
	response := RequestHistoryResponse{
		Action:    entry.Action,
		Timestamp: entry.Timestamp,
	}
	if entry.User != nil {
		response.User = entry.User.Username
	}
	if entry.Metadata != nil {
		response.Metadata = make(map[string]string, len(entry.Metadata))
		for key, value := range entry.Metadata {
			if str, ok := value.(string); ok {
				response.Metadata[key] = str
			}
		}
	}
	return response
}

// RequestDetailResponse is the full representation with nested history and
// attachments.
type RequestDetailResponse struct {
	ID          uint                     `json:"id"`
	Student     UserResponse             `json:"student"`
	RequestType *RequestTypeResponse     `json:"request_type,omitempty"`
	Details     string                   `json:"details"`
	Status      models.RequestStatus     `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	History     []RequestHistoryResponse `json:"history"`
	Attachments []AttachmentResponse     `json:"attachments"`
}

// NewRequestDetailResponse converts a request with preloaded associations
// into its detail DTO.
func NewRequestDetailResponse(request models.Request) RequestDetailResponse {
	response := RequestDetailResponse{
		ID:          request.ID,
		Details:     request.Details,
		Status:      request.Status,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
		History:     make([]RequestHistoryResponse, 0, len(request.History)),
		Attachments: make([]AttachmentResponse, 0, len(request.Attachments)),
	}
	if request.Student != nil {
		response.Student = NewUserResponse(*request.Student)
	}
	if request.RequestType != nil {
		requestType := NewRequestTypeResponse(*request.RequestType)
		response.RequestType = &requestType
	}
	for _, entry := range request.History {
		response.History = append(response.History, NewRequestHistoryResponse(entry))
	}
	for _, attachment := range request.Attachments {
		response.Attachments = append(response.Attachments, NewAttachmentResponse(attachment))
	}
	return response
}
