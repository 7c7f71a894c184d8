package user

import (
	"net/http"

	"flexileave/internal/middleware"
	"flexileave/internal/shared/apperror"
	"flexileave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{svc: service, logger: l}
}

func writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		writeError(c, apperror.ErrUnauthorized)
		return
	}
	h.logger.Debug("http get me", zap.String("user_id", actor.ID))

	resp, err := h.svc.Me(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
