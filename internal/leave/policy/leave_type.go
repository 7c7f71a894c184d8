// Package policy holds the leave rules shared by every entry point: day
// counting, balance lookup, request validation and the approval state machine.
// Nothing here touches storage or the network.
package policy

import "strings"

type LeaveType string

const (
	AnnualLeave          LeaveType = "AnnualLeave"
	SickLeave            LeaveType = "SickLeave"
	FamilyResponsibility LeaveType = "FamilyResponsibility"
	UnpaidLeave          LeaveType = "UnpaidLeave"
	Other                LeaveType = "Other"
)

var leaveTypes = []LeaveType{AnnualLeave, SickLeave, FamilyResponsibility, UnpaidLeave, Other}

var leaveTypeLabels = map[LeaveType]string{
	AnnualLeave:          "Annual Leave",
	SickLeave:            "Sick Leave",
	FamilyResponsibility: "Family Responsibility",
	UnpaidLeave:          "Unpaid Leave",
	Other:                "Other",
}

var labelLeaveTypes = func() map[string]LeaveType {
	m := make(map[string]LeaveType, len(leaveTypeLabels))
	for t, label := range leaveTypeLabels {
		m[label] = t
	}
	return m
}()

// LeaveTypes returns the known leave types in display order.
func LeaveTypes() []LeaveType {
	out := make([]LeaveType, len(leaveTypes))
	copy(out, leaveTypes)
	return out
}

// ParseLeaveType accepts either the internal key ("SickLeave") or the
// display label ("Sick Leave").
func ParseLeaveType(v string) (LeaveType, bool) {
	v = strings.TrimSpace(v)
	if t := LeaveType(v); t.Valid() {
		return t, true
	}
	if t, ok := labelLeaveTypes[v]; ok {
		return t, true
	}
	return "", false
}

func (t LeaveType) Valid() bool {
	_, ok := leaveTypeLabels[t]
	return ok
}

func (t LeaveType) Label() string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t LeaveType) String() string { return string(t) }

// RequiresBalance is false only for unpaid leave.
func (t LeaveType) RequiresBalance() bool {
	return t != UnpaidLeave
}

// Balances maps a leave type to the number of days a user has left.
type Balances map[LeaveType]int

// Remaining returns 0 when the user has no entitlement for t.
func (b Balances) Remaining(t LeaveType) int {
	if b == nil {
		return 0
	}
	return b[t]
}

// ResolveBalance looks up the remaining days for a display label or key.
// Unknown labels and missing records both resolve to 0.
func ResolveBalance(label string, balances Balances) int {
	t, ok := ParseLeaveType(label)
	if !ok {
		return 0
	}
	return balances.Remaining(t)
}
