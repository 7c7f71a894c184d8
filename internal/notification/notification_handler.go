package notification

import (
	"net/http"
	"strconv"

	"flexileave/internal/middleware"
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
	l := zap.L().Named("notification.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("notification request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	resp, err := h.service.List(c.Request.Context(), actor, unreadOnly)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.SuccessPage(c, resp)
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true}, nil)
}
