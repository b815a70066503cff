package flow

import (
	"fmt"
	"sort"
	"time"
)

const (
	MinEnergy = 1
	MaxEnergy = 5
)

// ClampEnergy bounds an energy rating to 1..5.
func ClampEnergy(v int) int {
	if v < MinEnergy {
		return MinEnergy
	}
	if v > MaxEnergy {
		return MaxEnergy
	}
	return v
}

// CompleteSession appends a finished session. Sessions are never edited
// afterwards.
func (s Snapshot) CompleteSession(sess Session, now time.Time) (Snapshot, Session, error) {
	if _, ok := s.Bucket(sess.BucketID); !ok {
		return s, Session{}, fmt.Errorf("complete session: bucket %q: %w", sess.BucketID, ErrNotFound)
	}
	if sess.TaskID != "" {
		if _, ok := s.Task(sess.TaskID); !ok {
			return s, Session{}, fmt.Errorf("complete session: task %q: %w", sess.TaskID, ErrNotFound)
		}
	}
	if !sess.Type.Valid() {
		return s, Session{}, fmt.Errorf("complete session: %w: unknown session type %q", ErrInvalid, sess.Type)
	}
	if sess.ActualMin < 0 {
		return s, Session{}, fmt.Errorf("complete session: %w: negative duration", ErrInvalid)
	}
	sess.EnergyBefore = ClampEnergy(sess.EnergyBefore)
	if sess.EnergyAfter != 0 {
		sess.EnergyAfter = ClampEnergy(sess.EnergyAfter)
	}
	if sess.EndedAt.IsZero() {
		sess.EndedAt = At(now)
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = sess.EndedAt - Millis(time.Duration(sess.ActualMin)*time.Minute/time.Millisecond)
	}
	sess.ID = NewID("sess")
	s.Sessions = append(cloneSlice(s.Sessions), sess)
	return s, sess, nil
}

// LastSession returns the bucket's session with the greatest StartedAt.
func (s Snapshot) LastSession(bucketID string) (Session, bool) {
	var last Session
	found := false
	for _, sess := range s.Sessions {
		if sess.BucketID != bucketID {
			continue
		}
		if !found || sess.StartedAt > last.StartedAt {
			last = sess
			found = true
		}
	}
	return last, found
}

// LatestSession returns the most recently started session overall.
func (s Snapshot) LatestSession() (Session, bool) {
	var last Session
	found := false
	for _, sess := range s.Sessions {
		if !found || sess.StartedAt > last.StartedAt {
			last = sess
			found = true
		}
	}
	return last, found
}

// SessionsOn returns sessions started on day's calendar date.
func (s Snapshot) SessionsOn(day time.Time) []Session {
	var out []Session
	for _, sess := range s.Sessions {
		if SameDay(sess.StartedAt, day) {
			out = append(out, sess)
		}
	}
	return out
}

func sortStable[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
