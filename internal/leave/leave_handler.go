package leave

import (
	"net/http"

	"flexileave/internal/domain"
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
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) actor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return actor, ok
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.logger.Debug("http create leave", zap.String("actor_id", actor.ID))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Validate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req ValidateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.SuccessPage(c, resp)
}

func (h *Handler) ListPending(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.ListPendingForApproval(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.SuccessPage(c, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req RejectLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http reject leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"), req.RejectionReason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
