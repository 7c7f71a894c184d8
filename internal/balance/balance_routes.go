package balance

import (
	"flexileave/internal/middleware"
	"flexileave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret string,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware(jwtSecret), middleware.ExtractUserID())
	{
		balances.GET("/me", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionRead), handler.GetMine)
		balances.GET("/:user_id", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionManage), handler.GetByUser)
		balances.PUT("/:user_id", middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionManage), handler.Set)
	}
}
