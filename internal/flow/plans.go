package flow

import (
	"fmt"
	"time"
)

const (
	MaxSprintBuckets = 2
	MaxOutcomes      = 3
)

// SavePlan upserts a plan. It replaces the plan with the same ID, or failing
// that the plan with the same type and dateKey, keeping its position;
// otherwise the plan is appended. Partial plans are valid.
func (s Snapshot) SavePlan(p Plan, now time.Time) (Snapshot, Plan, error) {
	if p.Type != PlanNightly && p.Type != PlanWeekly {
		return s, Plan{}, fmt.Errorf("save plan: %w: unknown plan type %q", ErrInvalid, p.Type)
	}
	if p.DateKey == "" {
		return s, Plan{}, fmt.Errorf("save plan: %w: date key is required", ErrInvalid)
	}
	if len(p.SprintBucketIDs) > MaxSprintBuckets {
		p.SprintBucketIDs = p.SprintBucketIDs[:MaxSprintBuckets]
	}
	if len(p.Outcomes) > MaxOutcomes {
		p.Outcomes = p.Outcomes[:MaxOutcomes]
	}
	p.SprintBucketIDs = cloneSlice(p.SprintBucketIDs)
	p.Outcomes = cloneSlice(p.Outcomes)
	p.CreatedAt = At(now)

	idx := -1
	if p.ID != "" {
		for i, existing := range s.Plans {
			if existing.ID == p.ID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		for i, existing := range s.Plans {
			if existing.Type == p.Type && existing.DateKey == p.DateKey {
				idx = i
				break
			}
		}
	}

	if idx < 0 {
		if p.ID == "" {
			p.ID = NewID("plan")
		}
		s.Plans = append(cloneSlice(s.Plans), p)
		return s, p, nil
	}

	p.ID = s.Plans[idx].ID
	plans := make([]Plan, 0, len(s.Plans))
	for i, existing := range s.Plans {
		switch {
		case i == idx:
			plans = append(plans, p)
		case existing.Type == p.Type && existing.DateKey == p.DateKey:
			// one plan per (type, dateKey)
		default:
			plans = append(plans, existing)
		}
	}
	s.Plans = plans
	return s, p, nil
}
