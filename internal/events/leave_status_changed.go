package events

import "time"

const LeaveStatusChangedTopic = "leave.request.status.v1"

const (
	LeaveSubmitted = "leave_submitted"
	LeaveUpdated   = "leave_updated"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveCancelled = "leave_cancelled"
)

// LeaveStatusChangedEvent is published through the outbox after every
// successful leave transition. Consumers key notifications off EventType.
type LeaveStatusChangedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	LeaveID         string    `json:"leave_id"`
	Reference       string    `json:"reference"`
	OwnerID         string    `json:"owner_id"`
	ActorID         string    `json:"actor_id"`
	LeaveType       string    `json:"leave_type"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Days            int       `json:"days"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
