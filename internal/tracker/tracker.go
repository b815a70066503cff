// Package tracker holds the live snapshot and persists every change.
package tracker

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

// ErrUnsaved wraps a persistence failure after a mutation. The change is kept
// in memory; only the write failed.
var ErrUnsaved = errors.New("change not saved")

// Persister is the storage the tracker writes through to.
type Persister interface {
	Load() (flow.Snapshot, error)
	Save(flow.Snapshot) error
}

type Tracker struct {
	store Persister
	snap  flow.Snapshot
	now   func() time.Time
}

// New loads the snapshot from p. A load error is logged and the tracker
// continues on whatever snapshot Load returned (the seed, for the sqlite
// store). The error is returned too so callers may report it.
func New(p Persister) (*Tracker, error) {
	snap, err := p.Load()
	if err != nil {
		log.Printf("warning: %v; starting from defaults", err)
	}
	return &Tracker{store: p, snap: flow.Normalize(snap), now: time.Now}, err
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

func (t *Tracker) Now() time.Time { return t.now() }

// Snapshot returns the current state.
func (t *Tracker) Snapshot() flow.Snapshot { return t.snap }

func (t *Tracker) apply(next flow.Snapshot) error {
	t.snap = next
	if err := t.store.Save(next); err != nil {
		log.Printf("save snapshot: %v", err)
		return fmt.Errorf("%w: %v", ErrUnsaved, err)
	}
	return nil
}

// SaveTask creates or updates a task. Rejected drafts leave state untouched.
func (t *Tracker) SaveTask(draft flow.Task) (flow.Task, error) {
	next, task, err := t.snap.SaveTask(draft, t.now())
	if err != nil {
		return flow.Task{}, err
	}
	return task, t.apply(next)
}

func (t *Tracker) MoveTask(id string, state flow.TaskState) (flow.Task, error) {
	next, task, err := t.snap.MoveTask(id, state, t.now())
	if err != nil {
		return flow.Task{}, err
	}
	return task, t.apply(next)
}

func (t *Tracker) CompleteSession(sess flow.Session) (flow.Session, error) {
	next, saved, err := t.snap.CompleteSession(sess, t.now())
	if err != nil {
		return flow.Session{}, err
	}
	return saved, t.apply(next)
}

func (t *Tracker) SavePlan(p flow.Plan) (flow.Plan, error) {
	next, saved, err := t.snap.SavePlan(p, t.now())
	if err != nil {
		return flow.Plan{}, err
	}
	return saved, t.apply(next)
}

func (t *Tracker) Capture(text string) (flow.MindDumpItem, error) {
	next, item, err := t.snap.Capture(text, t.now())
	if err != nil {
		return flow.MindDumpItem{}, err
	}
	return item, t.apply(next)
}

func (t *Tracker) ConvertMindDump(id, bucketID string) (flow.Task, error) {
	next, task, err := t.snap.ConvertMindDump(id, bucketID, t.now())
	if err != nil {
		return flow.Task{}, err
	}
	return task, t.apply(next)
}

func (t *Tracker) ArchiveMindDump(id string) error {
	next, err := t.snap.ArchiveMindDump(id)
	if err != nil {
		return err
	}
	return t.apply(next)
}

func (t *Tracker) SaveWorkspace(ws flow.Workspace) error {
	next, err := t.snap.SaveWorkspace(ws)
	if err != nil {
		return err
	}
	return t.apply(next)
}

// Replace swaps in a whole snapshot, as an import does.
func (t *Tracker) Replace(s flow.Snapshot) error {
	return t.apply(flow.Normalize(s))
}

// Focus derives today's selection from the current snapshot.
func (t *Tracker) Focus() flow.Focus {
	return flow.SelectFocus(t.snap, t.now())
}

// Badges derives RESUME/STALE badges for every bucket.
func (t *Tracker) Badges() map[string]flow.Badge {
	return flow.Badges(t.snap, t.now())
}
