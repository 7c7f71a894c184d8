package policy

import "time"

// Period is a closed range of calendar dates.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Days() int { return ComputeDays(p.Start, p.End) }

// Overlaps reports whether a and b share at least one calendar day.
// Adjacent periods do not overlap.
func Overlaps(a, b Period) bool {
	return !DateOnly(a.Start).After(DateOnly(b.End)) &&
		!DateOnly(a.End).Before(DateOnly(b.Start))
}

// ExistingRequest is the slice of a stored leave request the validator needs.
type ExistingRequest struct {
	ID     string
	Status Status
	Period Period
}

// ActiveOnly drops rejected and cancelled requests and the request with
// excludeID, which is the one being edited.
func ActiveOnly(existing []ExistingRequest, excludeID string) []ExistingRequest {
	out := make([]ExistingRequest, 0, len(existing))
	for _, e := range existing {
		if !e.Status.Active() {
			continue
		}
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FirstOverlap returns the first active request intersecting p.
func FirstOverlap(p Period, existing []ExistingRequest, excludeID string) (ExistingRequest, bool) {
	for _, e := range ActiveOnly(existing, excludeID) {
		if Overlaps(p, e.Period) {
			return e, true
		}
	}
	return ExistingRequest{}, false
}
