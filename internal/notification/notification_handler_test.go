package notification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"flexileave/internal/domain"
	"flexileave/internal/events"
	"flexileave/internal/notification"
	notificationerrors "flexileave/internal/notification/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	unreadOnly bool
	markErr    error
}

func (f *fakeService) List(_ context.Context, _ domain.Actor, unreadOnly bool) ([]notification.NotificationResponse, error) {
	f.unreadOnly = unreadOnly
	return []notification.NotificationResponse{}, nil
}

func (f *fakeService) MarkRead(context.Context, domain.Actor, string) error {
	return f.markErr
}

func (f *fakeService) HandleLeaveEvent(context.Context, events.LeaveStatusChangedEvent) error {
	return nil
}

func newNotificationContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	c.Set("user_id_validated", "user-1")
	c.Set("role", "user")
	return c, w
}

func TestNotificationHandler(t *testing.T) {
	t.Run("list unread", func(t *testing.T) {
		svc := &fakeService{}
		h := notification.NewHandler(svc)

		c, w := newNotificationContext(http.MethodGet, "/notifications?unread=true")
		h.List(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.unreadOnly)
	})

	t.Run("mark read", func(t *testing.T) {
		h := notification.NewHandler(&fakeService{})

		c, w := newNotificationContext(http.MethodPost, "/notifications/n-1/read")
		c.Params = gin.Params{{Key: "id", Value: "n-1"}}
		h.MarkRead(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("mark read not found", func(t *testing.T) {
		h := notification.NewHandler(&fakeService{markErr: notificationerrors.ErrNotificationNotFound})

		c, w := newNotificationContext(http.MethodPost, "/notifications/n-1/read")
		h.MarkRead(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
