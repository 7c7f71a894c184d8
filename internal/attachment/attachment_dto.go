package attachment

import "io"

// FileUpload is one multipart file handed to the service by the handler.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	LeaveID     string `json:"leave_id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
