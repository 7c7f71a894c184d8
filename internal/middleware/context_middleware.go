package middleware

import (
	"flexileave/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger binds a logger tagged with the request id and, once the token
// has been checked, the caller's id and role. Mount it after RequestID and
// AuthMiddleware.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if contextutil.GetRequestID(ctx) == "" {
			if rid := c.GetString("request_id"); rid != "" {
				ctx = contextutil.WithRequestID(ctx, rid)
			}
		}
		if actor, ok := ActorFromContext(c); ok {
			ctx = contextutil.WithActor(ctx, actor)
		}

		reqLogger := logger.With(contextutil.ExtractMetadata(ctx).Fields()...)
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))

		c.Next()
	}
}
