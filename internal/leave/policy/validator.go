package policy

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	leaveerrors "flexileave/internal/leave/errors"
)

const (
	MinReasonLength = 10
	MaxLeaveDays    = 365
	MaxAttachments  = 5
)

// MessageOverlap is also reported when the storage-level overlap constraint
// fires.
const MessageOverlap = "you already have a leave request that overlaps with these dates"

const (
	FieldLeaveType        = "leave_type"
	FieldStartDate        = "start_date"
	FieldEndDate          = "end_date"
	FieldReason           = "reason"
	FieldEmergencyContact = "emergency_contact"
	FieldEmergencyPhone   = "emergency_phone"
	FieldDays             = "days"
	FieldAttachments      = "attachments"
)

// Draft is the form state of a leave request being created or edited.
// It is a value: every With method returns a modified copy.
type Draft struct {
	id               string
	leaveType        string
	start            time.Time
	end              time.Time
	reason           string
	emergencyContact string
	emergencyPhone   string
	attachments      int
}

func NewDraft() Draft { return Draft{} }

// WithID marks the draft as an edit of the stored request id, which is then
// ignored by the overlap check.
func (d Draft) WithID(id string) Draft {
	d.id = id
	return d
}

func (d Draft) WithLeaveType(v string) Draft {
	d.leaveType = v
	return d
}

// WithPeriod sets the dates. A zero time means the date was not provided.
func (d Draft) WithPeriod(start, end time.Time) Draft {
	d.start = start
	d.end = end
	return d
}

func (d Draft) WithReason(v string) Draft {
	d.reason = v
	return d
}

func (d Draft) WithEmergencyContact(name, phone string) Draft {
	d.emergencyContact = name
	d.emergencyPhone = phone
	return d
}

func (d Draft) WithAttachments(n int) Draft {
	d.attachments = n
	return d
}

func (d Draft) ID() string { return d.id }

func (d Draft) LeaveType() (LeaveType, bool) { return ParseLeaveType(d.leaveType) }

func (d Draft) Period() (Period, bool) {
	if d.start.IsZero() || d.end.IsZero() {
		return Period{}, false
	}
	return Period{Start: DateOnly(d.start), End: DateOnly(d.end)}, true
}

func (d Draft) Reason() string { return strings.TrimSpace(d.reason) }

func (d Draft) EmergencyContact() (name, phone string) {
	return strings.TrimSpace(d.emergencyContact), strings.TrimSpace(d.emergencyPhone)
}

func (d Draft) Attachments() int { return d.attachments }

// Days is 0 until both dates are set.
func (d Draft) Days() int {
	p, ok := d.Period()
	if !ok {
		return 0
	}
	return p.Days()
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is empty when the draft is admissible.
type Result struct {
	Errors []FieldError `json:"errors"`
}

func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r Result) ByField() map[string][]string {
	out := make(map[string][]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

func (r Result) Has(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Err converts a failed result into an INVALID_INPUT error carrying the
// field errors as details.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return leaveerrors.ErrValidationFailed.WithDetails(r.Errors)
}

func (r *Result) add(field, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	r.Errors = append(r.Errors, FieldError{Field: field, Message: msg})
}

// Validate applies every leave rule to d and collects all failures.
// existing holds the owner's stored requests in any status; balances holds
// their remaining days. A rule whose inputs are missing is skipped.
func Validate(d Draft, existing []ExistingRequest, balances Balances) Result {
	var r Result

	leaveType, typeOK := d.LeaveType()
	switch {
	case strings.TrimSpace(d.leaveType) == "":
		r.add(FieldLeaveType, "leave type is required")
	case !typeOK:
		r.add(FieldLeaveType, "leave type is invalid")
	case leaveType.RequiresBalance() && balances.Remaining(leaveType) <= 0:
		r.add(FieldLeaveType, "no days remaining for %s", leaveType.Label())
	}

	reason := d.Reason()
	switch {
	case reason == "":
		r.add(FieldReason, "reason is required")
	case utf8.RuneCountInString(reason) < MinReasonLength:
		r.add(FieldReason, "reason must be at least %d characters", MinReasonLength)
	}

	contact, phone := d.EmergencyContact()
	if contact != "" && phone == "" {
		r.add(FieldEmergencyPhone, "emergency phone is required")
	}
	if phone != "" && contact == "" {
		r.add(FieldEmergencyContact, "emergency contact is required")
	}

	if d.start.IsZero() {
		r.add(FieldStartDate, "start date is required")
	}
	if d.end.IsZero() {
		r.add(FieldEndDate, "end date is required")
	}

	if period, ok := d.Period(); ok {
		if period.End.Before(period.Start) {
			r.add(FieldEndDate, "end date must be after start date")
		} else {
			days := period.Days()
			if days > MaxLeaveDays {
				r.add(FieldEndDate, "leave period cannot exceed %d days", MaxLeaveDays)
			}
			if typeOK && leaveType.RequiresBalance() {
				if remaining := balances.Remaining(leaveType); days > remaining {
					r.add(FieldDays, "You only have %d %s days remaining, but you're requesting %d days",
						remaining, leaveType.Label(), days)
				}
			}
			if _, clash := FirstOverlap(period, existing, d.id); clash {
				r.add(FieldStartDate, MessageOverlap)
			}
		}
	}

	if d.attachments > MaxAttachments {
		r.add(FieldAttachments, "a leave request cannot have more than %d attachments", MaxAttachments)
	}

	return r
}

// CheckAttachmentLimit rejects an upload that would push a request past
// MaxAttachments.
func CheckAttachmentLimit(current, adding int) error {
	if current+adding > MaxAttachments {
		return leaveerrors.ErrTooManyAttachments
	}
	return nil
}
