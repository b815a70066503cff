package flow

import (
	"testing"
	"time"
)

func sessionAt(bucketID string, started time.Time) Session {
	return Session{
		ID:        NewID("sess"),
		BucketID:  bucketID,
		Type:      SessionAnchor,
		ActualMin: 25,
		StartedAt: At(started),
		EndedAt:   At(started.Add(25 * time.Minute)),
	}
}

// ============================================================
// Neglect / resume
// ============================================================

func TestIsNeglectedThreshold(t *testing.T) {
	s := newTestSnapshot()
	if !s.IsNeglected("b1", testNow) {
		t.Fatal("bucket without sessions is neglected")
	}

	s.Sessions = []Session{sessionAt("b1", testNow.Add(-NeglectAfter-time.Millisecond))}
	if !s.IsNeglected("b1", testNow) {
		t.Fatal("48h+1ms should be neglected")
	}

	s.Sessions = []Session{sessionAt("b1", testNow.Add(-NeglectAfter+time.Millisecond))}
	if s.IsNeglected("b1", testNow) {
		t.Fatal("48h-1ms should not be neglected")
	}

	s.Sessions = []Session{sessionAt("b1", testNow.Add(-NeglectAfter))}
	if s.IsNeglected("b1", testNow) {
		t.Fatal("exactly 48h is not more than 48h")
	}
}

func TestLastSessionUsesStartedAt(t *testing.T) {
	s := newTestSnapshot()
	s.Sessions = []Session{
		sessionAt("b1", testNow.Add(-3*time.Hour)),
		sessionAt("b1", testNow.Add(-1*time.Hour)),
		sessionAt("b1", testNow.Add(-2*time.Hour)),
	}
	last, ok := s.LastSession("b1")
	if !ok {
		t.Fatal("expected a session")
	}
	if last.StartedAt != At(testNow.Add(-time.Hour)) {
		t.Fatalf("wrong last session: %+v", last)
	}
	if _, ok := s.LastSession("b2"); ok {
		t.Fatal("b2 has no sessions")
	}
}

func TestBadgesResumeWinsOverStale(t *testing.T) {
	s := newTestSnapshot()
	// The only session anywhere is old: b3 is both neglected and the owner
	// of the latest session.
	s.Sessions = []Session{sessionAt("b3", testNow.Add(-72*time.Hour))}

	badges := Badges(s, testNow)
	if badges["b3"] != BadgeResume {
		t.Fatalf("expected RESUME for b3, got %q", badges["b3"])
	}
	if badges["b1"] != BadgeStale {
		t.Fatalf("expected STALE for b1, got %q", badges["b1"])
	}
}

func TestBadgesFreshBucketUntagged(t *testing.T) {
	s := newTestSnapshot()
	s.Sessions = []Session{
		sessionAt("b1", testNow.Add(-5*time.Hour)),
		sessionAt("b2", testNow.Add(-1*time.Hour)),
	}
	badges := Badges(s, testNow)
	if badges["b1"] != BadgeNone {
		t.Fatalf("expected no badge for b1, got %q", badges["b1"])
	}
	if badges["b2"] != BadgeResume {
		t.Fatalf("expected RESUME for b2, got %q", badges["b2"])
	}
	if BadgeStale.String() != "STALE" || BadgeResume.String() != "RESUME" {
		t.Fatal("badge labels changed")
	}
}

// ============================================================
// Anchor
// ============================================================

func TestSelectFocusAnchorFallbackChain(t *testing.T) {
	s := newTestSnapshot()
	ready := Task{ID: "ready", BucketID: "b1", Title: "r", State: StateReady, NextAction: "a", DoneDefinition: "d"}
	doing := Task{ID: "doing", BucketID: "b2", Title: "d", State: StateDoing, NextAction: "a", DoneDefinition: "d", UpdatedAt: At(testNow)}

	// No tasks: first Main Work bucket.
	f := SelectFocus(s, testNow)
	if f.Anchor == nil || f.Anchor.ID != "b1" {
		t.Fatalf("expected b1 with no tasks, got %+v", f.Anchor)
	}
	if f.AnchorTask != nil {
		t.Fatal("no task expected")
	}

	// A Main Work bucket with a Ready task wins over one with nothing.
	s.Tasks = []Task{{ID: "inbox", BucketID: "b1", Title: "i", State: StateInbox}, {ID: "ready", BucketID: "b3", Title: "r", State: StateReady, NextAction: "a", DoneDefinition: "d"}}
	f = SelectFocus(s, testNow)
	if f.Anchor.ID != "b3" {
		t.Fatalf("expected b3 with a Ready task, got %s", f.Anchor.ID)
	}

	// Within the chosen bucket a Doing task beats a Ready one.
	s.Tasks = []Task{ready, {ID: "doing1", BucketID: "b1", Title: "d", State: StateDoing, NextAction: "a", DoneDefinition: "d", UpdatedAt: At(testNow)}}
	f = SelectFocus(s, testNow)
	if f.Anchor.ID != "b1" || f.AnchorTask == nil || f.AnchorTask.ID != "doing1" {
		t.Fatalf("expected b1/doing1, got %+v / %+v", f.Anchor, f.AnchorTask)
	}

	// A bucket with a Doing task beats an earlier bucket with only Ready.
	s.Tasks = []Task{ready, doing}
	f = SelectFocus(s, testNow)
	if f.Anchor.ID != "b2" || f.AnchorTask.ID != "doing" {
		t.Fatalf("expected b2/doing, got %s/%s", f.Anchor.ID, f.AnchorTask.ID)
	}

	// Bucket order breaks ties between buckets in the same state.
	s.Tasks = []Task{
		{ID: "r3", BucketID: "b3", Title: "r", State: StateReady, NextAction: "a", DoneDefinition: "d"},
		{ID: "r2", BucketID: "b2", Title: "r", State: StateReady, NextAction: "a", DoneDefinition: "d"},
	}
	f = SelectFocus(s, testNow)
	if f.Anchor.ID != "b2" || f.AnchorTask.ID != "r2" {
		t.Fatalf("expected b2/r2 by bucket order, got %s/%s", f.Anchor.ID, f.AnchorTask.ID)
	}
}

func TestSelectFocusPlanOverrides(t *testing.T) {
	s := newTestSnapshot()
	s.Tasks = []Task{
		{ID: "x", BucketID: "b1", Title: "x", State: StateReady, NextAction: "a", DoneDefinition: "d"},
		{ID: "planned", BucketID: "b3", Title: "p", State: StateInbox},
	}
	s.Plans = []Plan{{
		ID: "p1", Type: PlanNightly, DateKey: NightlyKey(testNow),
		AnchorBucketID: "b3", AnchorTaskID: "planned",
		SprintBucketIDs:  []string{"b5", "b4"},
		RecoveryBucketID: "b8",
	}}

	f := SelectFocus(s, testNow)
	if f.Plan == nil || f.Plan.ID != "p1" {
		t.Fatal("expected today's plan")
	}
	if f.Anchor.ID != "b3" || f.AnchorTask == nil || f.AnchorTask.ID != "planned" {
		t.Fatalf("plan anchor not used: %+v %+v", f.Anchor, f.AnchorTask)
	}
	if f.Sprint == nil || f.Sprint.ID != "b5" {
		t.Fatalf("expected first planned sprint b5, got %+v", f.Sprint)
	}
	if f.Recovery == nil || f.Recovery.ID != "b8" {
		t.Fatalf("expected planned recovery b8, got %+v", f.Recovery)
	}
}

func TestSelectFocusIgnoresOtherDaysPlan(t *testing.T) {
	s := newTestSnapshot()
	s.Plans = []Plan{{ID: "p1", Type: PlanNightly, DateKey: NightlyKey(testNow.AddDate(0, 0, 1)), AnchorBucketID: "b3"}}
	f := SelectFocus(s, testNow)
	if f.Plan != nil {
		t.Fatal("tomorrow's plan must not drive today")
	}
	if f.Anchor.ID != "b1" {
		t.Fatalf("expected heuristic anchor b1, got %s", f.Anchor.ID)
	}
}

func TestSelectFocusMissingPlannedBucketFallsThrough(t *testing.T) {
	s := newTestSnapshot()
	s.Plans = []Plan{{ID: "p1", Type: PlanNightly, DateKey: NightlyKey(testNow), AnchorBucketID: "gone", RecoveryBucketID: "gone"}}
	f := SelectFocus(s, testNow)
	if f.Anchor == nil || f.Anchor.ID != "b1" {
		t.Fatalf("expected fallback anchor b1, got %+v", f.Anchor)
	}
	if f.Recovery == nil || f.Recovery.ID != "b6" {
		t.Fatalf("expected fallback recovery b6, got %+v", f.Recovery)
	}
}

func TestSelectFocusNoBuckets(t *testing.T) {
	f := SelectFocus(Snapshot{}, testNow)
	if !f.Empty() {
		t.Fatal("expected empty focus")
	}
	if f.Sprint != nil || f.Recovery != nil {
		t.Fatal("expected nothing selected")
	}
}

func TestSelectFocusStaleAnchor(t *testing.T) {
	s := newTestSnapshot()
	s.Tasks = []Task{{ID: "d", BucketID: "b1", Title: "d", State: StateDoing, NextAction: "a", DoneDefinition: "d",
		UpdatedAt: At(testNow.Add(-StaleAfter - time.Minute))}}
	if f := SelectFocus(s, testNow); !f.AnchorStale {
		t.Fatal("expected stale anchor")
	}

	s.Tasks[0].UpdatedAt = At(testNow.Add(-time.Hour))
	if f := SelectFocus(s, testNow); f.AnchorStale {
		t.Fatal("recently updated task is not stale")
	}

	s.Tasks[0].State = StateReady
	s.Tasks[0].UpdatedAt = At(testNow.Add(-100 * time.Hour))
	if f := SelectFocus(s, testNow); f.AnchorStale {
		t.Fatal("only Doing tasks go stale")
	}
}

func TestSelectFocusGoalContext(t *testing.T) {
	s := Seed(testNow)
	f := SelectFocus(s, testNow)
	if f.Anchor.ID != "b2" || f.AnchorTask == nil || f.AnchorTask.ID != "t1" {
		t.Fatalf("expected seed task as anchor, got %+v", f.AnchorTask)
	}
	if f.Milestone == nil || f.Milestone.ID != "m1" || f.Goal == nil || f.Goal.ID != "g1" {
		t.Fatalf("expected goal context g1/m1, got %+v %+v", f.Goal, f.Milestone)
	}
}

// ============================================================
// Sprint / recovery
// ============================================================

func TestSelectFocusSprintPrefersNeglectedNonAnchor(t *testing.T) {
	s := newTestSnapshot()
	s.Sessions = []Session{
		sessionAt("b2", testNow.Add(-time.Hour)),
		sessionAt("b3", testNow.Add(-2*time.Hour)),
	}
	f := SelectFocus(s, testNow)
	// anchor is b1 (first Main Work); b2, b3 recently touched; b4 neglected.
	if f.Anchor.ID != "b1" {
		t.Fatalf("expected anchor b1, got %s", f.Anchor.ID)
	}
	if f.Sprint == nil || f.Sprint.ID != "b4" {
		t.Fatalf("expected sprint b4, got %+v", f.Sprint)
	}
	if !f.SprintNeglected {
		t.Fatal("b4 is neglected")
	}
}

func TestSelectFocusSprintFallsBackToSupportingHabits(t *testing.T) {
	s := newTestSnapshot()
	for _, id := range []string{"b1", "b2", "b3", "b4", "b5"} {
		s.Sessions = append(s.Sessions, sessionAt(id, testNow.Add(-time.Hour)))
	}
	f := SelectFocus(s, testNow)
	if f.Sprint == nil || f.Sprint.ID != "b4" {
		t.Fatalf("expected first Supporting Habits bucket b4, got %+v", f.Sprint)
	}
	if f.SprintNeglected {
		t.Fatal("b4 was touched an hour ago")
	}
	if f.Recovery == nil || f.Recovery.ID != "b6" {
		t.Fatalf("expected first Self-Care bucket b6, got %+v", f.Recovery)
	}
}

func TestSelectFocusDeterministic(t *testing.T) {
	s := Seed(testNow)
	a := SelectFocus(s, testNow)
	b := SelectFocus(s, testNow)
	if a.Anchor.ID != b.Anchor.ID || a.Sprint.ID != b.Sprint.ID || a.Recovery.ID != b.Recovery.ID {
		t.Fatal("selection must be deterministic")
	}
}
