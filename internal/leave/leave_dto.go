package leave

import "flexileave/internal/leave/policy"

// CreateLeaveRequest carries no binding rules: every field is checked by the
// leave policy so all problems are reported together.
type CreateLeaveRequest struct {
	LeaveType        string `json:"leave_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Reason           string `json:"reason"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
}

type UpdateLeaveRequest struct {
	LeaveType        string `json:"leave_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Reason           string `json:"reason"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
}

// ValidateLeaveRequest is a dry run of create or, with LeaveID set, of update.
type ValidateLeaveRequest struct {
	LeaveID          string `json:"leave_id"`
	LeaveType        string `json:"leave_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Reason           string `json:"reason"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
	Attachments      int    `json:"attachments"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required,notblank"`
}

type ValidationResponse struct {
	Valid  bool                `json:"valid"`
	Days   int                 `json:"days"`
	Errors []policy.FieldError `json:"errors"`
}

type LeaveResponse struct {
	ID               string  `json:"id"`
	Reference        string  `json:"reference"`
	OwnerID          string  `json:"owner_id"`
	LeaveType        string  `json:"leave_type"`
	LeaveTypeLabel   string  `json:"leave_type_label"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Days             int     `json:"days"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	EmergencyPhone   *string `json:"emergency_phone,omitempty"`
	DecidedBy        *string `json:"decided_by,omitempty"`
	DecidedAt        *string `json:"decided_at,omitempty"`
	Attachments      int     `json:"attachments"`
	CreatedAt        string  `json:"created_at,omitempty"`
}
