package notification

import (
	"flexileave/internal/middleware"
	"flexileave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service, jwtSecret string) {
	read := middleware.RBACAuthorize(rbacService, rbac.ResourceNotification, rbac.ActionRead)

	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	{
		notifications.GET("", read, handler.List)
		notifications.POST("/:id/read", read, handler.MarkRead)
	}
}
