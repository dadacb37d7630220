package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/student-affairs/servicedesk-api/internal/dto"
	"github.com/student-affairs/servicedesk-api/internal/handler"
	"github.com/student-affairs/servicedesk-api/internal/models"
)

type stubNotificationService struct {
	items []dto.NotificationResponse
}

func (s stubNotificationService) NotifyStatusChange(context.Context, models.Request, models.RequestStatus) error {
	return nil
}

func (s stubNotificationService) List(context.Context, uint, int, int) ([]dto.NotificationResponse, error) {
	return s.items, nil
}

func (s stubNotificationService) MarkRead(context.Context, uint, uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (s stubNotificationService) Subscribe(uint) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	close(ch)
	return ch, func() {}
}

func (s stubNotificationService) Start(context.Context) {}

func TestNotificationListContract(t *testing.T) {
	schema := compileSchema(t, "notification_list.schema.json")

	requestID := uint(12)
	svc := stubNotificationService{items: []dto.NotificationResponse{
		{
			ID:        1,
			UserID:    42,
			RequestID: &requestID,
			Message:   "Request #12 (Transcript Copy) status changed to 'APPROVED'",
			IsRead:    false,
			CreatedAt: time.Now().UTC(),
		},
	}}

	notificationHandler := handler.NewNotificationHandler(svc, zerolog.Nop(), time.Second)

	app := fiber.New()
	app.Get("/api/v1/notifications", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", models.RoleStudent)
		return c.Next()
	}, notificationHandler.List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
