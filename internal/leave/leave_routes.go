package leave

import (
	"flexileave/internal/middleware"
	"flexileave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	jwtSecret string,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	{
		create := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate)}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb))
		}
		create = append(create, handler.Create)

		leaves.POST("", create...)
		leaves.POST("/validate", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate), handler.Validate)
		leaves.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.ListMine)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadAll), handler.ListPending)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByID)
		leaves.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionUpdate), handler.Update)
		leaves.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCancel), handler.Cancel)
		leaves.POST("/:id/approve", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove), handler.Approve)
		leaves.POST("/:id/reject", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove), handler.Reject)
	}
}
