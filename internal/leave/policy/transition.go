package policy

import (
	"strings"
	"time"

	"flexileave/internal/domain"
	leaveerrors "flexileave/internal/leave/errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(v string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}

func (s Status) String() string { return string(s) }

// Terminal statuses accept no further action.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Active requests count for overlap checks.
func (s Status) Active() bool {
	return s != StatusRejected && s != StatusCancelled
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionEdit    Action = "edit"
)

// Subject is what the state machine needs to know about a stored request.
type Subject struct {
	OwnerID string
	Status  Status
	EndDate time.Time
}

// Authorize decides whether actor may apply action to subject at time now.
// State errors win over authorization errors so terminal requests always
// report that they can no longer be modified.
func Authorize(action Action, actor domain.Actor, subject Subject, now time.Time) error {
	if subject.Status != StatusPending {
		return leaveerrors.ErrLeaveFinalized
	}

	switch action {
	case ActionApprove, ActionReject:
		if !actor.IsAdmin() {
			return leaveerrors.ErrAdminRequired
		}
		if actor.Owns(subject.OwnerID) {
			return leaveerrors.ErrSelfDecision
		}
	case ActionCancel:
		if !actor.Owns(subject.OwnerID) {
			return leaveerrors.ErrNotOwner
		}
	case ActionEdit:
		if !actor.Owns(subject.OwnerID) {
			return leaveerrors.ErrNotOwner
		}
		if DateOnly(now).After(DateOnly(subject.EndDate)) {
			return leaveerrors.ErrLeaveEnded
		}
	default:
		return leaveerrors.ErrUnknownAction
	}
	return nil
}

// Transition returns the status a pending request moves to under action.
func Transition(action Action) Status {
	switch action {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	case ActionCancel:
		return StatusCancelled
	default:
		return StatusPending
	}
}

// RequireRejectionReason trims reason and rejects an empty one.
func RequireRejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", leaveerrors.ErrRejectionReasonRequired
	}
	return reason, nil
}

// CanView reports whether actor may read a request owned by ownerID.
func CanView(actor domain.Actor, ownerID string) bool {
	return actor.IsAdmin() || actor.Owns(ownerID)
}
