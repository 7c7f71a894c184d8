package attachment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"flexileave/internal/attachment"
	"flexileave/internal/domain"
	leaveerrors "flexileave/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAttachmentService struct {
	uploadFn      func(ctx context.Context, actor domain.Actor, leaveID string, file attachment.FileUpload) (attachment.AttachmentResponse, error)
	listFn        func(ctx context.Context, actor domain.Actor, leaveID string) ([]attachment.AttachmentResponse, error)
	downloadURLFn func(ctx context.Context, actor domain.Actor, id string) (attachment.DownloadURLResponse, error)
	deleteFn      func(ctx context.Context, actor domain.Actor, id string) error
}

func (f *fakeAttachmentService) Upload(ctx context.Context, actor domain.Actor, leaveID string, file attachment.FileUpload) (attachment.AttachmentResponse, error) {
	return f.uploadFn(ctx, actor, leaveID, file)
}

func (f *fakeAttachmentService) List(ctx context.Context, actor domain.Actor, leaveID string) ([]attachment.AttachmentResponse, error) {
	return f.listFn(ctx, actor, leaveID)
}

func (f *fakeAttachmentService) DownloadURL(ctx context.Context, actor domain.Actor, id string) (attachment.DownloadURLResponse, error) {
	return f.downloadURLFn(ctx, actor, id)
}

func (f *fakeAttachmentService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.deleteFn(ctx, actor, id)
}

func multipartBody(t *testing.T, name, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	assert.NoError(t, err)
	_, _ = part.Write([]byte(content))
	assert.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func newUploadContext(body io.Reader, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/leaves/leave-1/attachments", body)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: "leave-1"}}
	c.Set("user_id_validated", "user-1")
	c.Set("role", "user")
	return c, w
}

func TestAttachmentHandler_Upload(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeAttachmentService{
			uploadFn: func(_ context.Context, actor domain.Actor, leaveID string, file attachment.FileUpload) (attachment.AttachmentResponse, error) {
				assert.Equal(t, "user-1", actor.ID)
				assert.Equal(t, "leave-1", leaveID)
				assert.Equal(t, "note.pdf", file.Name)
				assert.Equal(t, "application/pdf", file.ContentType)
				assert.EqualValues(t, 5, file.Size)
				return attachment.AttachmentResponse{ID: "file-1", Name: file.Name}, nil
			},
		}
		h := attachment.NewHandler(svc)

		body, ct := multipartBody(t, "note.pdf", "application/pdf", "hello")
		c, w := newUploadContext(body, ct)
		h.Upload(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		h := attachment.NewHandler(&fakeAttachmentService{})

		c, w := newUploadContext(bytes.NewBufferString("{}"), "application/json")
		h.Upload(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		svc := &fakeAttachmentService{
			uploadFn: func(context.Context, domain.Actor, string, attachment.FileUpload) (attachment.AttachmentResponse, error) {
				return attachment.AttachmentResponse{}, leaveerrors.ErrTooManyAttachments
			},
		}
		h := attachment.NewHandler(svc)

		body, ct := multipartBody(t, "note.pdf", "application/pdf", "hello")
		c, w := newUploadContext(body, ct)
		h.Upload(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})
}

func TestAttachmentHandler_Delete(t *testing.T) {
	svc := &fakeAttachmentService{
		deleteFn: func(_ context.Context, _ domain.Actor, id string) error {
			if id == "file-1" {
				return nil
			}
			return leaveerrors.ErrLeaveFinalized
		},
	}
	h := attachment.NewHandler(svc)

	for id, want := range map[string]int{"file-1": http.StatusOK, "file-2": http.StatusConflict} {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/attachments/"+id, nil)
		c.Params = gin.Params{{Key: "id", Value: id}}
		c.Set("user_id_validated", "user-1")
		c.Set("role", "user")

		h.Delete(c)

		assert.Equal(t, want, w.Code, id)
	}
}
