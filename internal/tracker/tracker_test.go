package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/store"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// memPersister keeps the last saved snapshot and can be told to fail.
type memPersister struct {
	snap    flow.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memPersister) Load() (flow.Snapshot, error) {
	if m.loadErr != nil {
		return flow.Seed(testNow), m.loadErr
	}
	return m.snap, nil
}

func (m *memPersister) Save(s flow.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = s
	return nil
}

func newTestTracker(t *testing.T) (*Tracker, *memPersister) {
	t.Helper()
	p := &memPersister{snap: flow.Seed(testNow)}
	tr, err := New(p)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	tr.SetClock(func() time.Time { return testNow })
	return tr, p
}

// ============================================================
// Mutations
// ============================================================

func TestSaveTaskPersists(t *testing.T) {
	tr, p := newTestTracker(t)
	task, err := tr.SaveTask(flow.Task{BucketID: "b1", Title: "Outline essay"})
	if err != nil {
		t.Fatal(err)
	}
	if task.State != flow.StateInbox {
		t.Fatalf("expected Inbox, got %s", task.State)
	}
	if p.saves != 1 {
		t.Fatalf("expected one save, got %d", p.saves)
	}
	if _, ok := p.snap.Task(task.ID); !ok {
		t.Fatal("saved snapshot missing new task")
	}
}

func TestSaveTaskRejectedLeavesStateUntouched(t *testing.T) {
	tr, p := newTestTracker(t)
	before := len(tr.Snapshot().Tasks)
	_, err := tr.SaveTask(flow.Task{BucketID: "b1", Title: "Vague", State: flow.StateReady})
	if !errors.Is(err, flow.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if len(tr.Snapshot().Tasks) != before {
		t.Fatal("rejected task should not be applied")
	}
	if p.saves != 0 {
		t.Fatal("rejected task should not be saved")
	}
}

func TestMoveTaskGate(t *testing.T) {
	tr, _ := newTestTracker(t)
	task, err := tr.SaveTask(flow.Task{BucketID: "b1", Title: "Idea"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.MoveTask(task.ID, flow.StateDoing); !errors.Is(err, flow.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	moved, err := tr.MoveTask(task.ID, flow.StateParked)
	if err != nil {
		t.Fatalf("park: %v", err)
	}
	if moved.State != flow.StateParked {
		t.Fatalf("expected Parked, got %s", moved.State)
	}
}

func TestCompleteSession(t *testing.T) {
	tr, p := newTestTracker(t)
	sess, err := tr.CompleteSession(flow.Session{
		BucketID: "b2", TaskID: "t1", Type: flow.SessionAnchor,
		PlannedMin: 50, ActualMin: 45, EnergyBefore: 9,
		CloseoutFirstAction: "Open the reducer chapter",
	})
	if err != nil {
		t.Fatal(err)
	}
	if sess.EnergyBefore != flow.MaxEnergy {
		t.Fatalf("energy not clamped: %d", sess.EnergyBefore)
	}
	if len(p.snap.Sessions) != 1 {
		t.Fatalf("expected 1 persisted session, got %d", len(p.snap.Sessions))
	}
	if !tr.Snapshot().IsResumeCandidate("b2") {
		t.Fatal("b2 should be the resume candidate")
	}
	if tr.Badges()["b2"] != flow.BadgeResume {
		t.Fatal("expected RESUME badge on b2")
	}
}

func TestSavePlanDrivesFocus(t *testing.T) {
	tr, _ := newTestTracker(t)
	_, err := tr.SavePlan(flow.Plan{
		Type:             flow.PlanNightly,
		DateKey:          flow.NightlyKey(testNow),
		AnchorBucketID:   "b3",
		SprintBucketIDs:  []string{"b5"},
		RecoveryBucketID: "b9",
	})
	if err != nil {
		t.Fatal(err)
	}
	f := tr.Focus()
	if f.Anchor == nil || f.Anchor.ID != "b3" {
		t.Fatalf("expected anchor b3, got %+v", f.Anchor)
	}
	if f.Sprint == nil || f.Sprint.ID != "b5" {
		t.Fatalf("expected sprint b5, got %+v", f.Sprint)
	}
	if f.Recovery == nil || f.Recovery.ID != "b9" {
		t.Fatalf("expected recovery b9, got %+v", f.Recovery)
	}
}

func TestMindDumpFlow(t *testing.T) {
	tr, _ := newTestTracker(t)
	a, err := tr.Capture("renew passport")
	if err != nil {
		t.Fatal(err)
	}
	b, err := tr.Capture("email professor")
	if err != nil {
		t.Fatal(err)
	}

	task, err := tr.ConvertMindDump(b.ID, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "email professor" || task.State != flow.StateInbox {
		t.Fatalf("unexpected converted task: %+v", task)
	}
	if err := tr.ArchiveMindDump(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := tr.ArchiveMindDump(b.ID); !errors.Is(err, flow.ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
	if n := len(tr.Snapshot().InboxItems()); n != 0 {
		t.Fatalf("expected empty inbox, got %d", n)
	}
}

func TestCaptureEmptyRejected(t *testing.T) {
	tr, p := newTestTracker(t)
	if _, err := tr.Capture("   "); !errors.Is(err, flow.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if p.saves != 0 {
		t.Fatal("nothing should be saved")
	}
}

func TestSaveWorkspace(t *testing.T) {
	tr, _ := newTestTracker(t)
	ws, ok := tr.Snapshot().WorkspaceFor("b1")
	if !ok {
		t.Fatal("seed workspace missing")
	}
	ws, err := ws.AddLink("Syllabus", "https://example.edu/syllabus")
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.SaveWorkspace(ws); err != nil {
		t.Fatal(err)
	}
	got, _ := tr.Snapshot().WorkspaceFor("b1")
	if len(got.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(got.Links))
	}
}

// ============================================================
// Persistence failures
// ============================================================

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	tr, p := newTestTracker(t)
	p.saveErr = errors.New("disk full")

	item, err := tr.Capture("still here")
	if !errors.Is(err, ErrUnsaved) {
		t.Fatalf("expected ErrUnsaved, got %v", err)
	}
	if _, ok := tr.Snapshot().MindDump(item.ID); !ok {
		t.Fatal("in-memory snapshot should keep the change")
	}
}

func TestLoadFailureStartsFromSeed(t *testing.T) {
	p := &memPersister{loadErr: errors.New("corrupt")}
	tr, err := New(p)
	if err == nil {
		t.Fatal("expected load error to be returned")
	}
	if len(tr.Snapshot().Buckets) != 9 {
		t.Fatalf("expected seed buckets, got %d", len(tr.Snapshot().Buckets))
	}
}

func TestReplace(t *testing.T) {
	tr, p := newTestTracker(t)
	imported := flow.Snapshot{Buckets: []flow.Bucket{{ID: "x", Name: "Imported", Category: flow.MainWork}}}
	if err := tr.Replace(imported); err != nil {
		t.Fatal(err)
	}
	if len(p.snap.Buckets) != 1 || p.snap.Tasks == nil {
		t.Fatalf("replaced snapshot not normalised: %+v", p.snap)
	}
}

// ============================================================
// With the sqlite store
// ============================================================

func TestTrackerWithSQLiteStore(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	tr, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	tr.SetClock(func() time.Time { return testNow })
	if _, err := tr.SaveTask(flow.Task{BucketID: "b3", Title: "Invoice client"}); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened.Snapshot().TasksIn("b3")) != 1 {
		t.Fatal("task not persisted through the store")
	}
}
