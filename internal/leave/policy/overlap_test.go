package policy_test

import (
	"testing"

	"flexileave/internal/leave/policy"

	"github.com/stretchr/testify/assert"
)

func period(start, end string) policy.Period {
	return policy.Period{Start: date(start), End: date(end)}
}

func TestOverlaps(t *testing.T) {
	jan10to12 := period("2024-01-10", "2024-01-12")
	jan13to15 := period("2024-01-13", "2024-01-15")
	jan12to13 := period("2024-01-12", "2024-01-13")

	assert.False(t, policy.Overlaps(jan10to12, jan13to15))
	assert.False(t, policy.Overlaps(jan13to15, jan10to12))
	assert.True(t, policy.Overlaps(jan10to12, jan12to13))
	assert.True(t, policy.Overlaps(jan12to13, jan13to15))
	assert.True(t, policy.Overlaps(period("2024-01-01", "2024-01-31"), jan13to15))
}

func TestOverlapsIsSymmetricAndReflexive(t *testing.T) {
	base := date("2024-05-01")
	var periods []policy.Period
	for s := 0; s < 8; s++ {
		for l := 0; l < 4; l++ {
			start := base.AddDate(0, 0, s)
			periods = append(periods, policy.Period{Start: start, End: start.AddDate(0, 0, l)})
		}
	}
	for _, a := range periods {
		assert.True(t, policy.Overlaps(a, a))
		for _, b := range periods {
			assert.Equal(t, policy.Overlaps(a, b), policy.Overlaps(b, a))
		}
	}
}

func TestActiveOnly(t *testing.T) {
	existing := []policy.ExistingRequest{
		{ID: "a", Status: policy.StatusPending},
		{ID: "b", Status: policy.StatusApproved},
		{ID: "c", Status: policy.StatusRejected},
		{ID: "d", Status: policy.StatusCancelled},
		{ID: "e", Status: policy.StatusPending},
	}

	got := policy.ActiveOnly(existing, "e")

	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Len(t, existing, 5)
}
