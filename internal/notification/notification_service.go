package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flexileave/internal/domain"
	"flexileave/internal/events"
	"flexileave/internal/leave/policy"
	notificationerrors "flexileave/internal/notification/errors"
	"flexileave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const listLimit = 100

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, actor domain.Actor, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, actor domain.Actor, id string) error
	HandleLeaveEvent(ctx context.Context, event events.LeaveStatusChangedEvent) error
}

type service struct {
	repo   Repository
	users  user.Repository
	mailer Mailer
	logger *zap.Logger
}

// NewService accepts a nil mailer; e-mail is then skipped.
func NewService(repo Repository, users user.Repository, mailer Mailer, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, users: users, mailer: mailer, logger: l}
}

func (s *service) List(ctx context.Context, actor domain.Actor, unreadOnly bool) ([]NotificationResponse, error) {
	items, err := s.repo.ListByUser(ctx, actor.ID, unreadOnly, listLimit)
	if err != nil {
		return nil, err
	}
	resp := make([]NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = mapToResponse(n)
	}
	return resp, nil
}

func (s *service) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}
	ok, err := s.repo.MarkRead(ctx, id, actor.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return notificationerrors.ErrNotificationNotFound
	}
	return nil
}

// HandleLeaveEvent fans one leave event out to its recipients. Submissions,
// edits and cancellations go to every admin except the owner; decisions go
// to the owner, by e-mail as well when a mailer is configured.
func (s *service) HandleLeaveEvent(ctx context.Context, event events.LeaveStatusChangedEvent) error {
	leaveID, err := uuid.Parse(event.LeaveID)
	if err != nil || event.OwnerID == "" {
		return notificationerrors.ErrMalformedEvent
	}

	title, message, toAdmins, known := describe(event)
	if !known {
		s.logger.Debug("ignoring leave event", zap.String("event_type", event.EventType))
		return nil
	}

	var recipients []user.User
	if toAdmins {
		admins, err := s.users.ListAdmins(ctx)
		if err != nil {
			return err
		}
		for _, a := range admins {
			if a.ID.String() != event.OwnerID {
				recipients = append(recipients, a)
			}
		}
	} else {
		owner, err := s.users.FindByID(ctx, event.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("leave owner not found", zap.String("owner_id", event.OwnerID))
				return nil
			}
			return err
		}
		recipients = []user.User{*owner}
	}

	items := make([]Notification, 0, len(recipients))
	for _, r := range recipients {
		items = append(items, Notification{
			ID:      uuid.New(),
			UserID:  r.ID,
			LeaveID: &leaveID,
			Kind:    event.EventType,
			Title:   title,
			Message: message,
		})
	}
	if err := s.repo.CreateMany(ctx, items); err != nil {
		s.logger.Error("store notifications failed", zap.String("leave_id", event.LeaveID), zap.Error(err))
		return err
	}

	if !toAdmins && s.mailer != nil {
		for _, r := range recipients {
			if r.Email == "" {
				continue
			}
			// Mail is best effort; the in-app notification is already stored.
			if err := s.mailer.Send(ctx, r.Email, title, message); err != nil {
				s.logger.Warn("send notification mail failed",
					zap.String("leave_id", event.LeaveID),
					zap.String("user_id", r.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("leave event notified",
		zap.String("request_id", event.RequestID),
		zap.String("event_type", event.EventType),
		zap.String("leave_id", event.LeaveID),
		zap.Int("recipients", len(items)),
	)
	return nil
}

func describe(e events.LeaveStatusChangedEvent) (title, message string, toAdmins, known bool) {
	label := e.LeaveType
	if t, ok := policy.ParseLeaveType(e.LeaveType); ok {
		label = t.Label()
	}
	summary := fmt.Sprintf("%s: %s from %s to %s (%d days)", e.Reference, label, e.StartDate, e.EndDate, e.Days)

	switch e.EventType {
	case events.LeaveSubmitted:
		return "New leave request", summary + " is waiting for approval.", true, true
	case events.LeaveUpdated:
		return "Leave request updated", summary + " was changed and is waiting for approval.", true, true
	case events.LeaveCancelled:
		return "Leave request cancelled", summary + " was cancelled by the requester.", true, true
	case events.LeaveApproved:
		return "Leave request approved", summary + " was approved.", false, true
	case events.LeaveRejected:
		msg := summary + " was rejected."
		if e.RejectionReason != "" {
			msg += " Reason: " + e.RejectionReason
		}
		return "Leave request rejected", msg, false, true
	default:
		return "", "", false, false
	}
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.ReadAt != nil,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.LeaveID != nil {
		v := n.LeaveID.String()
		resp.LeaveID = &v
	}
	if n.ReadAt != nil {
		v := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}
