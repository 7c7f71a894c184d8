package balance

type SetBalanceRequest struct {
	LeaveType string `json:"leave_type" binding:"required,notblank"`
	Remaining *int   `json:"remaining" binding:"required,min=0"`
}

type BalanceResponse struct {
	LeaveType       string `json:"leave_type"`
	Label           string `json:"label"`
	Remaining       int    `json:"remaining"`
	RequiresBalance bool   `json:"requires_balance"`
}
