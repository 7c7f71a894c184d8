package contextutil

import (
	"context"

	"flexileave/internal/domain"

	"go.uber.org/zap"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	actorKey
	loggerKey
)

func valueOf[T any](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	rid, _ := valueOf[string](ctx, requestIDKey)
	return rid
}

// WithActor records the authenticated caller so code below the handler can
// attribute work without taking a gin.Context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	return valueOf[domain.Actor](ctx, actorKey)
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request-scoped logger, then defaultLogger, then a
// no-op logger. It never returns nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if l, ok := valueOf[*zap.Logger](ctx, loggerKey); ok && l != nil {
		return l
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return zap.NewNop()
}

type Metadata struct {
	RequestID string
	UserID    string
	Role      domain.Role
}

func ExtractMetadata(ctx context.Context) Metadata {
	md := Metadata{RequestID: GetRequestID(ctx)}
	if actor, ok := ActorFrom(ctx); ok {
		md.UserID = actor.ID
		md.Role = actor.Role
	}
	return md
}

// Fields renders the non-empty metadata as zap fields.
func (m Metadata) Fields() []zap.Field {
	var fields []zap.Field
	if m.RequestID != "" {
		fields = append(fields, zap.String("request_id", m.RequestID))
	}
	if m.UserID != "" {
		fields = append(fields, zap.String("user_id", m.UserID))
	}
	if m.Role != "" {
		fields = append(fields, zap.String("role", m.Role.String()))
	}
	return fields
}
