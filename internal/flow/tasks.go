package flow

import (
	"fmt"
	"strings"
	"time"
)

// RequiresReadiness reports whether entering state needs a next action and
// a done definition.
func RequiresReadiness(state TaskState) bool {
	return state == StateReady || state == StateDoing
}

// ValidateTransition applies the readiness gate to task moving into target.
// Only Ready and Doing are gated; every other transition is accepted.
func ValidateTransition(task Task, target TaskState) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown task state %q", ErrInvalid, target)
	}
	if !RequiresReadiness(target) {
		return nil
	}
	var missing []string
	if strings.TrimSpace(task.NextAction) == "" {
		missing = append(missing, "next action")
	}
	if strings.TrimSpace(task.DoneDefinition) == "" {
		missing = append(missing, "done definition")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrNotReady, strings.Join(missing, " and "))
	}
	return nil
}

// SaveTask creates or updates a task. A draft with an empty ID is new and
// receives a fresh ID and CreatedAt. UpdatedAt is always stamped with now.
// Nothing is applied when validation fails.
func (s Snapshot) SaveTask(draft Task, now time.Time) (Snapshot, Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return s, Task{}, fmt.Errorf("save task: %w: title is required", ErrInvalid)
	}
	if draft.State == "" {
		draft.State = StateInbox
	}
	if _, ok := s.Bucket(draft.BucketID); !ok {
		return s, Task{}, fmt.Errorf("save task: bucket %q: %w", draft.BucketID, ErrNotFound)
	}
	if err := ValidateTransition(draft, draft.State); err != nil {
		return s, Task{}, fmt.Errorf("save task: %w", err)
	}

	stamp := At(now)
	draft.UpdatedAt = stamp

	if draft.ID == "" {
		draft.ID = NewID("t")
		draft.CreatedAt = stamp
		s.Tasks = append(cloneSlice(s.Tasks), draft)
		return s, draft, nil
	}

	idx := -1
	for i, t := range s.Tasks {
		if t.ID == draft.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, Task{}, fmt.Errorf("save task %q: %w", draft.ID, ErrNotFound)
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = s.Tasks[idx].CreatedAt
	}
	tasks := cloneSlice(s.Tasks)
	tasks[idx] = draft
	s.Tasks = tasks
	return s, draft, nil
}

// MoveTask changes only the state of an existing task, subject to the
// readiness gate.
func (s Snapshot) MoveTask(id string, state TaskState, now time.Time) (Snapshot, Task, error) {
	t, ok := s.Task(id)
	if !ok {
		return s, Task{}, fmt.Errorf("move task %q: %w", id, ErrNotFound)
	}
	t.State = state
	return s.SaveTask(t, now)
}
