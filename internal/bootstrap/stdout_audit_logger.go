package bootstrap

import (
	"context"
	"time"

	"flexileave/internal/shared/contextutil"

	"go.uber.org/zap"
)

type StdoutAuditLogger struct {
	logger *zap.Logger
}

func NewStdoutAuditLogger(logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutAuditLogger{logger: l}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	}
	fields = append(fields, contextutil.ExtractMetadata(ctx).Fields()...)
	l.logger.Info("audit event", fields...)
}
