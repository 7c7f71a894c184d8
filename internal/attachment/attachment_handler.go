package attachment

import (
	"net/http"

	attachmenterrors "flexileave/internal/attachment/errors"
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
	l := zap.L().Named("attachment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attachment request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
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

func (h *Handler) Upload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxFileSize+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn("http upload attachment missing file", zap.Error(err))
		h.writeServiceError(c, attachmenterrors.ErrFileRequired)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.writeServiceError(c, attachmenterrors.ErrFileRequired)
		return
	}
	defer file.Close()

	resp, err := h.service.Upload(c.Request.Context(), actor, c.Param("id"), FileUpload{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadURL(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.DownloadURL(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
