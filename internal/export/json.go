package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/contextflow/internal/flow"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	TotalMin   int           `json:"total_minutes"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID           string `json:"id"`
	Bucket       string `json:"bucket"`
	BucketID     string `json:"bucket_id"`
	Task         string `json:"task,omitempty"`
	Type         string `json:"type"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	PlannedMin   int    `json:"planned_minutes"`
	ActualMin    int    `json:"actual_minutes"`
	Duration     string `json:"duration"`
	EnergyBefore int    `json:"energy_before"`
	EnergyAfter  int    `json:"energy_after,omitempty"`
	Finished     string `json:"finished,omitempty"`
	Next         string `json:"next,omitempty"`
	FirstAction  string `json:"first_action,omitempty"`
}

// ToJSON writes a session report to path.
func ToJSON(sessions []flow.Session, snap flow.Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
		Sessions:   []jsonSession{},
	}

	for _, s := range sessions {
		export.TotalMin += s.ActualMin
		export.Sessions = append(export.Sessions, jsonSession{
			ID:           s.ID,
			Bucket:       snap.BucketName(s.BucketID),
			BucketID:     s.BucketID,
			Task:         taskTitle(snap, s.TaskID),
			Type:         string(s.Type),
			StartTime:    formatMillis(s.StartedAt),
			EndTime:      formatMillis(s.EndedAt),
			PlannedMin:   s.PlannedMin,
			ActualMin:    s.ActualMin,
			Duration:     formatDuration(s.ActualMin),
			EnergyBefore: s.EnergyBefore,
			EnergyAfter:  s.EnergyAfter,
			Finished:     s.CloseoutFinished,
			Next:         s.CloseoutNext,
			FirstAction:  s.CloseoutFirstAction,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
