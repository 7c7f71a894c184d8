package middleware

import (
	"net/http"

	"flexileave/internal/domain"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/contextutil"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Error(ctx, http.StatusUnauthorized, apperror.CodeUnauthorized, "User is not authenticated", nil)
			ctx.Abort()
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Error(ctx, http.StatusUnauthorized, apperror.CodeInvalidToken, "Invalid user_id format", nil)
			ctx.Abort()
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		if actor, ok := ActorFromContext(ctx); ok {
			ctx.Request = ctx.Request.WithContext(contextutil.WithActor(ctx.Request.Context(), actor))
		}
		ctx.Next()
	}
}

// ActorFromContext rebuilds the caller set by AuthMiddleware.
func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	id := c.GetString("user_id_validated")
	if id == "" {
		id = c.GetString("user_id")
	}
	role, ok := domain.ParseRole(c.GetString("role"))
	if id == "" || !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: role}, true
}
