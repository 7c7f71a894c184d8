package middleware

import (
	"net/http"

	"flexileave/internal/domain"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by rbac.Service without importing it here.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := domain.ParseRole(c.GetString("role"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				apperror.ErrForbidden.Message,
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
