package notification

type NotificationResponse struct {
	ID        string  `json:"id"`
	LeaveID   *string `json:"leave_id,omitempty"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Read      bool    `json:"read"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}
