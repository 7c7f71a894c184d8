package policy_test

import (
	"strings"
	"testing"
	"time"

	"flexileave/internal/domain"
	leaveerrors "flexileave/internal/leave/errors"
	"flexileave/internal/leave/policy"

	"github.com/stretchr/testify/assert"
)

var (
	admin1 = domain.Actor{ID: "admin1", Role: domain.RoleAdmin}
	admin2 = domain.Actor{ID: "admin2", Role: domain.RoleAdmin}
	owner  = domain.Actor{ID: "user1", Role: domain.RoleUser}
	other  = domain.Actor{ID: "user2", Role: domain.RoleUser}
)

func pendingOf(ownerID string) policy.Subject {
	return policy.Subject{OwnerID: ownerID, Status: policy.StatusPending, EndDate: date("2024-06-30")}
}

func TestAuthorize(t *testing.T) {
	now := date("2024-06-10")

	tests := []struct {
		name    string
		action  policy.Action
		actor   domain.Actor
		subject policy.Subject
		now     time.Time
		wantErr error
	}{
		{"admin approves another user's request", policy.ActionApprove, admin1, pendingOf("user1"), now, nil},
		{"admin rejects another admin's request", policy.ActionReject, admin1, pendingOf("admin2"), now, nil},
		{"admin cannot approve own request", policy.ActionApprove, admin1, pendingOf("admin1"), now, leaveerrors.ErrSelfDecision},
		{"admin cannot reject own request", policy.ActionReject, admin2, pendingOf("admin2"), now, leaveerrors.ErrSelfDecision},
		{"user cannot approve", policy.ActionApprove, other, pendingOf("user1"), now, leaveerrors.ErrAdminRequired},
		{"owner cannot approve", policy.ActionApprove, owner, pendingOf("user1"), now, leaveerrors.ErrAdminRequired},
		{"owner cancels", policy.ActionCancel, owner, pendingOf("user1"), now, nil},
		{"owner cancels after end date", policy.ActionCancel, owner, pendingOf("user1"), date("2024-08-01"), nil},
		{"admin cannot cancel someone else's", policy.ActionCancel, admin1, pendingOf("user1"), now, leaveerrors.ErrNotOwner},
		{"other user cannot cancel", policy.ActionCancel, other, pendingOf("user1"), now, leaveerrors.ErrNotOwner},
		{"owner edits", policy.ActionEdit, owner, pendingOf("user1"), now, nil},
		{"owner edits on the last day", policy.ActionEdit, owner, pendingOf("user1"), time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC), nil},
		{"owner cannot edit after end date", policy.ActionEdit, owner, pendingOf("user1"), date("2024-07-01"), leaveerrors.ErrLeaveEnded},
		{"other user cannot edit", policy.ActionEdit, other, pendingOf("user1"), now, leaveerrors.ErrNotOwner},
		{"unknown action", policy.Action("archive"), owner, pendingOf("user1"), now, leaveerrors.ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.action, tt.actor, tt.subject, tt.now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorize_TerminalStatesAreImmutable(t *testing.T) {
	actions := []policy.Action{policy.ActionApprove, policy.ActionReject, policy.ActionCancel, policy.ActionEdit}
	actors := []domain.Actor{admin1, admin2, owner, other}

	for _, status := range []policy.Status{policy.StatusApproved, policy.StatusRejected, policy.StatusCancelled} {
		assert.True(t, status.Terminal())
		for _, action := range actions {
			for _, actor := range actors {
				subject := policy.Subject{OwnerID: "user1", Status: status, EndDate: date("2030-01-01")}
				err := policy.Authorize(action, actor, subject, date("2024-01-01"))
				assert.ErrorIs(t, err, leaveerrors.ErrLeaveFinalized, "%s %s by %s", status, action, actor.ID)
			}
		}
	}
	assert.False(t, policy.StatusPending.Terminal())
}

func TestTransition(t *testing.T) {
	assert.Equal(t, policy.StatusApproved, policy.Transition(policy.ActionApprove))
	assert.Equal(t, policy.StatusRejected, policy.Transition(policy.ActionReject))
	assert.Equal(t, policy.StatusCancelled, policy.Transition(policy.ActionCancel))
	assert.Equal(t, policy.StatusPending, policy.Transition(policy.ActionEdit))
}

func TestRequireRejectionReason(t *testing.T) {
	got, err := policy.RequireRejectionReason("  team is short staffed  ")
	assert.NoError(t, err)
	assert.Equal(t, "team is short staffed", got)

	_, err = policy.RequireRejectionReason("   ")
	assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
}

func TestParseStatus(t *testing.T) {
	s, ok := policy.ParseStatus("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, policy.StatusApproved, s)

	_, ok = policy.ParseStatus("submitted")
	assert.False(t, ok)
}

func TestCanView(t *testing.T) {
	assert.True(t, policy.CanView(owner, "user1"))
	assert.True(t, policy.CanView(admin1, "user1"))
	assert.False(t, policy.CanView(other, "user1"))
}

func TestAuthorize_OwnershipUsesCanonicalIDs(t *testing.T) {
	const stored = "6f1c2a7e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"
	now := date("2024-06-10")
	upper := strings.ToUpper(stored)

	err := policy.Authorize(policy.ActionApprove, domain.Actor{ID: upper, Role: domain.RoleAdmin}, pendingOf(stored), now)
	assert.ErrorIs(t, err, leaveerrors.ErrSelfDecision)

	err = policy.Authorize(policy.ActionCancel, domain.Actor{ID: upper, Role: domain.RoleUser}, pendingOf(stored), now)
	assert.NoError(t, err)
}
