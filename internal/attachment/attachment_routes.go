package attachment

import (
	"flexileave/internal/middleware"
	"flexileave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service, jwtSecret string) {
	manage := middleware.RBACAuthorize(rbacService, rbac.ResourceAttachment, rbac.ActionManage)

	leaves := r.Group("/leaves/:id/attachments")
	leaves.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	{
		leaves.POST("", manage, handler.Upload)
		leaves.GET("", manage, handler.List)
	}

	files := r.Group("/attachments")
	files.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	{
		files.GET("/:id/url", manage, handler.DownloadURL)
		files.DELETE("/:id", manage, handler.Delete)
	}
}
