package flow

import (
	"fmt"
	"strings"
	"time"
)

// Capture prepends a new inbox item.
func (s Snapshot) Capture(text string, now time.Time) (Snapshot, MindDumpItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return s, MindDumpItem{}, fmt.Errorf("capture: %w: text is empty", ErrInvalid)
	}
	item := MindDumpItem{
		ID:        NewID("dump"),
		Text:      text,
		CreatedAt: At(now),
		Status:    DumpInbox,
	}
	items := make([]MindDumpItem, 0, len(s.MindDumpItems)+1)
	items = append(items, item)
	items = append(items, s.MindDumpItems...)
	s.MindDumpItems = items
	return s, item, nil
}

// ConvertToTask turns an inbox item into a new Inbox task in bucketID and
// returns the task together with the converted item.
func ConvertToTask(item MindDumpItem, bucketID string, now time.Time) (Task, MindDumpItem, error) {
	if item.Status.Terminal() {
		return Task{}, item, fmt.Errorf("convert %q: %w", item.ID, ErrTerminal)
	}
	stamp := At(now)
	task := Task{
		ID:        NewID("t"),
		BucketID:  bucketID,
		Title:     item.Text,
		State:     StateInbox,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	item.Status = DumpConverted
	item.BucketID = bucketID
	item.ConvertedTaskID = task.ID
	return task, item, nil
}

// ConvertMindDump applies ConvertToTask to the stored item.
func (s Snapshot) ConvertMindDump(id, bucketID string, now time.Time) (Snapshot, Task, error) {
	idx := s.dumpIndex(id)
	if idx < 0 {
		return s, Task{}, fmt.Errorf("convert %q: %w", id, ErrNotFound)
	}
	if _, ok := s.Bucket(bucketID); !ok {
		return s, Task{}, fmt.Errorf("convert %q: bucket %q: %w", id, bucketID, ErrNotFound)
	}
	task, item, err := ConvertToTask(s.MindDumpItems[idx], bucketID, now)
	if err != nil {
		return s, Task{}, err
	}
	items := cloneSlice(s.MindDumpItems)
	items[idx] = item
	s.MindDumpItems = items
	s.Tasks = append(cloneSlice(s.Tasks), task)
	return s, task, nil
}

// ArchiveMindDump moves an inbox item to archived.
func (s Snapshot) ArchiveMindDump(id string) (Snapshot, error) {
	idx := s.dumpIndex(id)
	if idx < 0 {
		return s, fmt.Errorf("archive %q: %w", id, ErrNotFound)
	}
	if s.MindDumpItems[idx].Status.Terminal() {
		return s, fmt.Errorf("archive %q: %w", id, ErrTerminal)
	}
	items := cloneSlice(s.MindDumpItems)
	items[idx].Status = DumpArchived
	s.MindDumpItems = items
	return s, nil
}

// InboxItems returns open items, newest first.
func (s Snapshot) InboxItems() []MindDumpItem {
	var out []MindDumpItem
	for _, d := range s.MindDumpItems {
		if d.Status == DumpInbox {
			out = append(out, d)
		}
	}
	sortStable(out, func(a, b MindDumpItem) bool { return a.CreatedAt > b.CreatedAt })
	return out
}

func (s Snapshot) dumpIndex(id string) int {
	for i, d := range s.MindDumpItems {
		if d.ID == id {
			return i
		}
	}
	return -1
}
