package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/student-affairs/servicedesk-api/internal/models"
	"github.com/student-affairs/servicedesk-api/internal/observability"
)

type notificationRepoStub struct {
	nextID uint
	items  map[uint]models.Notification
}

func newNotificationRepoStub() *notificationRepoStub {
	return &notificationRepoStub{nextID: 1, items: make(map[uint]models.Notification)}
}

func (r *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = r.nextID
	notification.CreatedAt = time.Now()
	r.nextID++
	r.items[notification.ID] = *notification
	return nil
}

func (r *notificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *notificationRepoStub) MarkRead(ctx context.Context, id uint, userID uint) (models.Notification, error) {
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return models.Notification{}, gorm.ErrRecordNotFound
	}
	item.IsRead = true
	r.items[id] = item
	return item, nil
}

func TestNotificationMessageIncludesTypeName(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	request := models.Request{
		ID:          12,
		StudentID:   42,
		RequestType: &models.RequestType{ID: 7, Name: "Dormitory Transfer"},
	}

	require.NoError(t, svc.NotifyStatusChange(context.Background(), request, models.StatusApproved))
	require.Len(t, repo.items, 1)
	require.Equal(t, "Request #12 (Dormitory Transfer) status changed to 'APPROVED'", repo.items[1].Message)
	require.Equal(t, uint(42), repo.items[1].UserID)
	require.NotNil(t, repo.items[1].RequestID)
	require.Equal(t, uint(12), *repo.items[1].RequestID)
}

func TestNotificationMessageFallsBackWhenTypeDeleted(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	request := models.Request{ID: 3, StudentID: 42}

	require.NoError(t, svc.NotifyStatusChange(context.Background(), request, models.StatusRejected))
	require.Equal(t, "Request #3 (Unspecified type) status changed to 'REJECTED'", repo.items[1].Message)
}

func TestNotificationSubscribeReceivesBroadcast(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	stream, cleanup := svc.Subscribe(42)
	defer cleanup()

	request := models.Request{ID: 5, StudentID: 42}
	require.NoError(t, svc.NotifyStatusChange(context.Background(), request, models.StatusInProgress))

	select {
	case received := <-stream:
		require.Equal(t, uint(42), received.UserID)
		require.Contains(t, received.Message, "IN_PROGRESS")
	case <-time.After(time.Second):
		t.Fatal("expected a streamed notification")
	}
}

func TestNotificationSubscribeCountsClientOnce(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	gauge := observability.SSEClientsActive()
	before := testutil.ToFloat64(gauge)

	_, cleanup := svc.Subscribe(42)
	require.Equal(t, before+1, testutil.ToFloat64(gauge))

	cleanup()
	require.Equal(t, before, testutil.ToFloat64(gauge))
}

func TestNotificationMarkReadUnknownID(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	_, err := svc.MarkRead(context.Background(), 999, 42)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := NewNotificationService(repo, nil, "servicedesk", nil, testLogger())

	require.NoError(t, repo.Create(context.Background(), &models.Notification{UserID: 42, Message: "hello"}))

	_, err := svc.MarkRead(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	marked, err := svc.MarkRead(context.Background(), 1, 42)
	require.NoError(t, err)
	require.True(t, marked.IsRead)
}

func TestNotificationRedisFanOutAcrossNodes(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	clientA := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer clientA.Close()
	clientB := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer clientB.Close()

	nodeA := NewNotificationService(newNotificationRepoStub(), clientA, "servicedesk", nil, testLogger())
	nodeB := NewNotificationService(newNotificationRepoStub(), clientB, "servicedesk", nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeB.Start(ctx)

	stream, cleanup := nodeB.Subscribe(42)
	defer cleanup()

	// Give the subscriber goroutine a moment to attach before publishing.
	require.Eventually(t, func() bool {
		request := models.Request{ID: 8, StudentID: 42}
		if err := nodeA.NotifyStatusChange(context.Background(), request, models.StatusApproved); err != nil {
			return false
		}
		select {
		case received := <-stream:
			return received.UserID == 42
		default:
			return false
		}
	}, 3*time.Second, 50*time.Millisecond)
}
