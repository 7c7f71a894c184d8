package user

import (
	"flexileave/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	jwtSecret string,
	logger *zap.Logger,
) {
	me := r.Group("/me")
	me.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	me.Use(middleware.ContextLogger(logger))
	{
		me.GET("", middleware.RateLimitByUser(3, 10), handler.Me)
	}
}
