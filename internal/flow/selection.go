package flow

import "time"

const (
	// NeglectAfter is how long a bucket may go without a session before it
	// counts as neglected.
	NeglectAfter = 48 * time.Hour

	// StaleAfter is how long a Doing task may sit untouched before the
	// anchor is flagged stale.
	StaleAfter = 24 * time.Hour
)

// Focus is the day's derived selection: one anchor, one sprint, one recovery.
type Focus struct {
	// Plan is today's nightly plan, when one exists.
	Plan *Plan

	Anchor     *Bucket
	AnchorTask *Task
	// AnchorStale is set when the anchor task has been Doing for more than
	// StaleAfter without an update.
	AnchorStale bool
	// AnchorLast is the anchor bucket's most recent session, used for
	// re-entry context.
	AnchorLast *Session

	Goal      *Goal
	Milestone *Milestone

	Sprint          *Bucket
	SprintNeglected bool

	Recovery *Bucket
}

// Empty reports whether there is nothing to anchor the day on.
func (f Focus) Empty() bool { return f.Anchor == nil }

// IsNeglected reports whether bucketID has no session started within
// NeglectAfter of now.
func (s Snapshot) IsNeglected(bucketID string, now time.Time) bool {
	last, ok := s.LastSession(bucketID)
	if !ok {
		return true
	}
	return now.Sub(last.StartedAt.Time()) > NeglectAfter
}

// IsResumeCandidate reports whether bucketID owns the most recently started
// session across all buckets.
func (s Snapshot) IsResumeCandidate(bucketID string) bool {
	latest, ok := s.LatestSession()
	return ok && latest.BucketID == bucketID
}

// IsStaleTask reports whether t is Doing and untouched for more than
// StaleAfter.
func IsStaleTask(t Task, now time.Time) bool {
	return t.State == StateDoing && now.Sub(t.UpdatedAt.Time()) > StaleAfter
}

// SelectFocus derives today's anchor, sprint and recovery. It is a pure
// function of the snapshot and now; ties go to the earliest entry.
func SelectFocus(s Snapshot, now time.Time) Focus {
	var f Focus
	if p, ok := s.Plan(PlanNightly, NightlyKey(now)); ok {
		f.Plan = &p
	}

	f.Anchor = s.pickAnchor(f.Plan)
	if f.Anchor != nil {
		f.AnchorTask = s.pickAnchorTask(f.Plan, f.Anchor.ID)
		if last, ok := s.LastSession(f.Anchor.ID); ok {
			f.AnchorLast = &last
		}
	}
	if f.AnchorTask != nil {
		f.AnchorStale = IsStaleTask(*f.AnchorTask, now)
		if m, ok := s.Milestone(f.AnchorTask.MilestoneID); ok {
			f.Milestone = &m
			if g, ok := s.Goal(m.GoalID); ok {
				f.Goal = &g
			}
		}
	}

	f.Sprint = s.pickSprint(f.Plan, f.Anchor, now)
	if f.Sprint != nil {
		f.SprintNeglected = s.IsNeglected(f.Sprint.ID, now)
	}

	f.Recovery = s.pickRecovery(f.Plan)
	return f
}

func (s Snapshot) pickAnchor(plan *Plan) *Bucket {
	if plan != nil && plan.AnchorBucketID != "" {
		if b, ok := s.Bucket(plan.AnchorBucketID); ok {
			return &b
		}
	}
	// A bucket with work in progress beats one with only Ready work.
	for _, state := range []TaskState{StateDoing, StateReady} {
		for _, b := range s.Buckets {
			if b.Category == MainWork && s.hasTaskIn(b.ID, state) {
				return &b
			}
		}
	}
	for _, b := range s.Buckets {
		if b.Category == MainWork {
			return &b
		}
	}
	return nil
}

func (s Snapshot) hasTaskIn(bucketID string, state TaskState) bool {
	for _, t := range s.Tasks {
		if t.BucketID == bucketID && t.State == state {
			return true
		}
	}
	return false
}

func (s Snapshot) pickAnchorTask(plan *Plan, bucketID string) *Task {
	if plan != nil && plan.AnchorTaskID != "" {
		if t, ok := s.Task(plan.AnchorTaskID); ok {
			return &t
		}
	}
	for _, state := range []TaskState{StateDoing, StateReady} {
		for _, t := range s.Tasks {
			if t.BucketID == bucketID && t.State == state {
				return &t
			}
		}
	}
	return nil
}

func (s Snapshot) pickSprint(plan *Plan, anchor *Bucket, now time.Time) *Bucket {
	if plan != nil && len(plan.SprintBucketIDs) > 0 {
		if b, ok := s.Bucket(plan.SprintBucketIDs[0]); ok {
			return &b
		}
	}
	for _, b := range s.Buckets {
		if anchor != nil && b.ID == anchor.ID {
			continue
		}
		if b.Category != MainWork && b.Category != SupportingHabits {
			continue
		}
		if s.IsNeglected(b.ID, now) {
			return &b
		}
	}
	for _, b := range s.Buckets {
		if b.Category == SupportingHabits {
			return &b
		}
	}
	return nil
}

func (s Snapshot) pickRecovery(plan *Plan) *Bucket {
	if plan != nil && plan.RecoveryBucketID != "" {
		if b, ok := s.Bucket(plan.RecoveryBucketID); ok {
			return &b
		}
	}
	for _, b := range s.Buckets {
		if b.Category == SelfCare {
			return &b
		}
	}
	return nil
}

type Badge int

const (
	BadgeNone Badge = iota
	BadgeResume
	BadgeStale
)

func (b Badge) String() string {
	switch b {
	case BadgeResume:
		return "RESUME"
	case BadgeStale:
		return "STALE"
	}
	return ""
}

// BadgeFor tags a bucket RESUME when it owns the latest session overall,
// otherwise STALE when it is neglected. RESUME always wins.
func (s Snapshot) BadgeFor(bucketID string, now time.Time) Badge {
	if s.IsResumeCandidate(bucketID) {
		return BadgeResume
	}
	if s.IsNeglected(bucketID, now) {
		return BadgeStale
	}
	return BadgeNone
}

// Badges computes BadgeFor for every bucket.
func Badges(s Snapshot, now time.Time) map[string]Badge {
	out := make(map[string]Badge, len(s.Buckets))
	for _, b := range s.Buckets {
		out[b.ID] = s.BadgeFor(b.ID, now)
	}
	return out
}
