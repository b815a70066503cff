package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewBuckets
	viewPlan
	viewReports
	viewSettings
)

var viewNames = []string{"Today", "Buckets", "Plan", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// snapshotChangedMsg tells every view to re-read the tracker.
type snapshotChangedMsg struct{}

// startSessionMsg opens the session overlay on a bucket.
type startSessionMsg struct {
	bucket flow.Bucket
	task   *flow.Task
	typ    flow.SessionType
}

type sessionDoneMsg struct {
	session flow.Session
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// errStatus reports err in the status bar. A failed save still changed the
// in-memory state, so views are refreshed as well.
func errStatus(err error) tea.Cmd {
	msg := statusMsg{text: "Error: " + err.Error(), isError: true}
	if errors.Is(err, tracker.ErrUnsaved) {
		msg.text = "Not saved: " + err.Error()
		return tea.Batch(
			func() tea.Msg { return msg },
			func() tea.Msg { return snapshotChangedMsg{} },
		)
	}
	return func() tea.Msg { return msg }
}

func changed(text string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return snapshotChangedMsg{} },
		status(text),
	)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
}

func formatAgo(now time.Time, m flow.Millis) string {
	d := now.Sub(m.Time())
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours())/24)
}

// defaultSessionType picks the session kind that suits a bucket's category.
func defaultSessionType(c flow.Category) flow.SessionType {
	switch c {
	case flow.SupportingHabits:
		return flow.SessionSprint
	case flow.SelfCare:
		return flow.SessionRecovery
	}
	return flow.SessionAnchor
}
