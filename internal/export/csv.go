package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

var csvHeader = []string{
	"ID", "Bucket", "Task", "Type", "Start", "End",
	"Planned (min)", "Actual (min)", "Duration", "Energy Before", "Energy After",
	"Finished", "Next", "First Action",
}

// ToCSV writes sessions to path, resolving bucket and task names from snap.
func ToCSV(sessions []flow.Session, snap flow.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			snap.BucketName(s.BucketID),
			taskTitle(snap, s.TaskID),
			string(s.Type),
			formatMillis(s.StartedAt),
			formatMillis(s.EndedAt),
			strconv.Itoa(s.PlannedMin),
			strconv.Itoa(s.ActualMin),
			formatDuration(s.ActualMin),
			strconv.Itoa(s.EnergyBefore),
			energy(s.EnergyAfter),
			s.CloseoutFinished,
			s.CloseoutNext,
			s.CloseoutFirstAction,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func taskTitle(snap flow.Snapshot, id string) string {
	if id == "" {
		return ""
	}
	if t, ok := snap.Task(id); ok {
		return t.Title
	}
	return "Unknown"
}

func formatMillis(m flow.Millis) string {
	if m.IsZero() {
		return ""
	}
	return m.Time().Local().Format(time.RFC3339)
}

func energy(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func formatDuration(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// Since returns the sessions started at or after from, oldest first. A zero
// from returns every session.
func Since(snap flow.Snapshot, from time.Time) []flow.Session {
	var out []flow.Session
	for _, s := range snap.Sessions {
		if from.IsZero() || !s.StartedAt.Time().Before(from) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt < out[j].StartedAt })
	return out
}
