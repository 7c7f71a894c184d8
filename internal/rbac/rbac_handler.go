package rbac

import (
	"net/http"
	"strings"

	"flexileave/internal/domain"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Enforce lets the frontend ask whether the current role may perform an
// action, instead of comparing role strings client-side.
func (h *Handler) Enforce(c *gin.Context) {
	var req struct {
		Resource string `json:"resource" binding:"required"`
		Action   string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, appErr.Status, appErr.Code, appErr.Message, nil)
		return
	}

	role, ok := domain.ParseRole(c.GetString("role"))
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Unknown role", nil)
		return
	}

	allowed, err := h.service.Enforce(domain.EnforceRequest{
		Role:     role,
		Resource: strings.TrimSpace(req.Resource),
		Action:   strings.TrimSpace(req.Action),
	})
	if err != nil {
		h.logger.Error("rbac enforce failed", zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) Permissions(c *gin.Context) {
	role, ok := domain.ParseRole(c.GetString("role"))
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Unknown role", nil)
		return
	}

	perms, err := h.service.Permissions(role)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, PermissionsResponse{Role: role.String(), Permissions: perms}, nil)
}
