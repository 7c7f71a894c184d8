package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flexileave/internal/events"
	notificationerrors "flexileave/internal/notification/errors"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// LeaveEventHandler is implemented by notification.Service.
type LeaveEventHandler interface {
	HandleLeaveEvent(ctx context.Context, event events.LeaveStatusChangedEvent) error
}

const maxRetryBackoff = 30 * time.Second

// ConsumeLeaveNotifications reads leave events until ctx is done. A message
// that fails transiently is retried in place with exponential backoff; the
// reader never moves past an offset that has not been handled.
func ConsumeLeaveNotifications(
	ctx context.Context,
	reader MessageReader,
	handler LeaveEventHandler,
	retryBackoff time.Duration,
	logger *zap.Logger,
) {
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	log := logger.Named("kafka.consumer.leave_notifications")
	log.Info("leave notification consumer started", zap.Duration("retry_backoff", retryBackoff))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave notification consumer stopped")
				return
			}
			log.Error("fetch leave event failed", zap.Error(err))
			continue
		}

		if !handleWithRetry(ctx, msg, handler, retryBackoff, log) {
			log.Info("leave notification consumer stopped", zap.Int64("uncommitted_offset", msg.Offset))
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave event failed", zap.Error(err))
		}
	}
}

// handleWithRetry returns false only when ctx ends before msg is handled.
func handleWithRetry(
	ctx context.Context,
	msg kafkago.Message,
	handler LeaveEventHandler,
	backoff time.Duration,
	log *zap.Logger,
) bool {
	for attempt := 1; ; attempt++ {
		if HandleLeaveMessage(ctx, msg, handler, log) {
			return true
		}

		log.Warn("retrying leave event",
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		backoff *= 2
		if backoff > maxRetryBackoff {
			backoff = maxRetryBackoff
		}
	}
}

// HandleLeaveMessage processes one message and reports whether its offset
// should be committed. Undecodable or malformed events are committed so they
// do not block the partition.
func HandleLeaveMessage(ctx context.Context, msg kafkago.Message, handler LeaveEventHandler, log *zap.Logger) bool {
	var event events.LeaveStatusChangedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	if err := handler.HandleLeaveEvent(ctx, event); err != nil {
		if errors.Is(err, notificationerrors.ErrMalformedEvent) {
			log.Warn("skipping malformed leave event",
				zap.String("event_type", event.EventType),
				zap.String("leave_id", event.LeaveID),
			)
			return true
		}
		log.Error("handle leave event failed",
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
			zap.String("leave_id", event.LeaveID),
			zap.Error(err),
		)
		return false
	}

	return true
}
