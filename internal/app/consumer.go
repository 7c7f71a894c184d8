package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flexileave/internal/events"
	"flexileave/internal/messaging/kafka/consumer"
	"flexileave/internal/notification"
	"flexileave/internal/shared/config"
	"flexileave/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const notificationConsumerGroup = "flexileave-notifications"

// RunConsumer turns leave status events into in-app notifications and mail.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	gormDB, sqlDB, err := connectDatabase(cfg)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	notificationService := notification.NewService(
		notification.NewRepository(gormDB),
		user.NewRepository(gormDB),
		notification.NewSMTPMailer(cfg.SMTP),
		zap.L(),
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.LeaveStatusChangedTopic,
		GroupID:        notificationConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeLeaveNotifications(ctx, reader, notificationService, time.Second, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
