package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/tracker"
)

// focus cards on the Today view
const (
	cardAnchor = iota
	cardSprint
	cardRecovery
	cardCount
)

// dayOffset values for the yesterday/today/tomorrow switch.
const (
	dayYesterday = -1
	dayToday     = 0
	dayTomorrow  = 1
)

type todayModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	snap  flow.Snapshot
	focus flow.Focus
	inbox []flow.MindDumpItem
	loops []flow.Task

	card       int
	dumpCursor int
	day        int

	formActive bool
	form       *huh.Form
	formType   string // "capture", "convert"

	formText   *string
	formBucket *string
}

func newTodayModel(tr *tracker.Tracker) todayModel {
	text, bucket := "", ""
	m := todayModel{
		tracker:    tr,
		formText:   &text,
		formBucket: &bucket,
	}
	m.reload()
	return m
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t *todayModel) reload() {
	t.snap = t.tracker.Snapshot()
	t.focus = t.tracker.Focus()
	t.inbox = t.snap.InboxItems()
	t.loops = flow.OpenLoops(t.snap, t.tracker.Now(), 3)
	if t.dumpCursor >= len(t.inbox) {
		t.dumpCursor = max(0, len(t.inbox)-1)
	}
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case snapshotChangedMsg:
		t.reload()
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if t.card > 0 {
				t.card--
			}
		case key.Matches(msg, keys.Right):
			if t.card < cardCount-1 {
				t.card++
			}
		case key.Matches(msg, keys.Up):
			if t.dumpCursor > 0 {
				t.dumpCursor--
			}
		case key.Matches(msg, keys.Down):
			if t.dumpCursor < len(t.inbox)-1 {
				t.dumpCursor++
			}
		case key.Matches(msg, keys.PrevDay):
			if t.day > dayYesterday {
				t.day--
			}
		case key.Matches(msg, keys.NextDay):
			if t.day < dayTomorrow {
				t.day++
			}
		case key.Matches(msg, keys.Start):
			return t, t.startSelected()
		case key.Matches(msg, keys.Capture):
			return t.showCaptureForm()
		case key.Matches(msg, keys.Convert):
			if len(t.inbox) > 0 {
				return t.showConvertForm()
			}
		case key.Matches(msg, keys.Archive):
			if len(t.inbox) > 0 {
				item := t.inbox[t.dumpCursor]
				if err := t.tracker.ArchiveMindDump(item.ID); err != nil {
					return t, errStatus(err)
				}
				return t, changed("Archived")
			}
		}
	}
	return t, nil
}

func (t todayModel) startSelected() tea.Cmd {
	var b *flow.Bucket
	var task *flow.Task
	typ := flow.SessionAnchor
	switch t.card {
	case cardAnchor:
		b, task = t.focus.Anchor, t.focus.AnchorTask
	case cardSprint:
		b, typ = t.focus.Sprint, flow.SessionSprint
	case cardRecovery:
		b, typ = t.focus.Recovery, flow.SessionRecovery
	}
	if b == nil {
		return func() tea.Msg {
			return statusMsg{text: "Nothing selected for this slot. Plan one on the Plan tab.", isError: true}
		}
	}
	bucket := *b
	return func() tea.Msg { return startSessionMsg{bucket: bucket, task: task, typ: typ} }
}

func (t todayModel) showCaptureForm() (todayModel, tea.Cmd) {
	*t.formText = ""
	t.formType = "capture"
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Capture").
				Placeholder("Get it out of your head").
				Value(t.formText),
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t todayModel) showConvertForm() (todayModel, tea.Cmd) {
	item := t.inbox[t.dumpCursor]
	*t.formText = item.ID
	*t.formBucket = ""
	if t.focus.Anchor != nil {
		*t.formBucket = t.focus.Anchor.ID
	}
	t.formType = "convert"
	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Move to bucket").
				Description(item.Text).
				Options(bucketOptions(t.snap.Buckets)...).
				Value(t.formBucket),
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func bucketOptions(buckets []flow.Bucket) []huh.Option[string] {
	opts := make([]huh.Option[string], len(buckets))
	for i, b := range buckets {
		opts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", b.Name, b.Category), b.ID)
	}
	return opts
}

func (t todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		switch t.formType {
		case "capture":
			if strings.TrimSpace(*t.formText) == "" {
				return t, nil
			}
			if _, err := t.tracker.Capture(*t.formText); err != nil {
				return t, errStatus(err)
			}
			return t, changed("Captured")
		case "convert":
			task, err := t.tracker.ConvertMindDump(*t.formText, *t.formBucket)
			if err != nil {
				return t, errStatus(err)
			}
			return t, changed(fmt.Sprintf("Task added to %s", t.snap.BucketName(task.BucketID)))
		}
	}
	return t, cmd
}

func (t todayModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("Mind Dump")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()))
	}

	greeting := titleStyle.Render(flow.Greeting(t.tracker.Now()))
	return lipgloss.JoinVertical(lipgloss.Left,
		greeting,
		t.renderCards(w),
		t.renderDay(w),
		t.renderMindDump(w),
	)
}

func (t todayModel) renderCards(w int) string {
	cardW := (w - 4) / 3
	if cardW < 20 {
		cardW = w
	}
	cards := []string{
		t.renderCard(cardAnchor, "ANCHOR", t.focus.Anchor, t.anchorLines(), cardW),
		t.renderCard(cardSprint, "SPRINT", t.focus.Sprint, t.sprintLines(), cardW),
		t.renderCard(cardRecovery, "RECOVERY", t.focus.Recovery, nil, cardW),
	}
	if cardW == w {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (t todayModel) renderCard(idx int, label string, b *flow.Bucket, lines []string, w int) string {
	style := panelStyle
	if idx == t.card {
		style = activePanelStyle
	}
	rows := []string{subtitleStyle.Render(label)}
	if b == nil {
		rows = append(rows, mutedStyle.Render("nothing to pick"))
	} else {
		rows = append(rows, fmt.Sprintf("%s %s", bucketDot(*b), titleStyle.Render(b.Name)))
		rows = append(rows, lines...)
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func (t todayModel) anchorLines() []string {
	f := t.focus
	var rows []string
	if f.Goal != nil && f.Milestone != nil {
		rows = append(rows, mutedStyle.Render(f.Goal.Title+" > "+f.Milestone.Title))
	}
	if f.AnchorTask == nil {
		return append(rows, mutedStyle.Render("No Ready task. Refine one first."))
	}
	rows = append(rows, highlightStyle.Render(f.AnchorTask.Title))
	if f.AnchorTask.NextAction != "" {
		rows = append(rows, "next: "+f.AnchorTask.NextAction)
	}
	switch {
	case f.AnchorStale:
		rows = append(rows, warningStyle.Render("Stuck? No update in over a day. Shrink the next action."))
	case f.AnchorLast != nil && f.AnchorLast.CloseoutFirstAction != "":
		rows = append(rows, successStyle.Render("resume: "+f.AnchorLast.CloseoutFirstAction))
	}
	return rows
}

func (t todayModel) sprintLines() []string {
	if t.focus.SprintNeglected {
		return []string{warningStyle.Render("neglected for 2+ days")}
	}
	return nil
}

func (t todayModel) renderDay(w int) string {
	now := t.tracker.Now()
	labels := map[int]string{dayYesterday: "Yesterday", dayToday: "Today", dayTomorrow: "Tomorrow"}
	var tabs []string
	for _, d := range []int{dayYesterday, dayToday, dayTomorrow} {
		if d == t.day {
			tabs = append(tabs, activeTabStyle.Render(labels[d]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(labels[d]))
		}
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)}

	day := now.AddDate(0, 0, t.day)
	if t.day == dayTomorrow {
		p, ok := t.snap.Plan(flow.PlanNightly, flow.NightlyKey(day))
		if !ok {
			rows = append(rows, mutedStyle.Render("No plan for tomorrow yet. Press 3 to plan tonight."))
		} else {
			rows = append(rows, planLines(t.snap, p)...)
		}
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	r := flow.Recap(t.snap, day)
	if len(r.Sessions) == 0 {
		rows = append(rows, mutedStyle.Render("No sessions."))
	} else {
		rows = append(rows, fmt.Sprintf("%d session(s), %s focused", len(r.Sessions), formatMinutes(r.TotalMin)))
		for _, s := range r.Sessions {
			rows = append(rows, fmt.Sprintf("  %s %-9s %-22s %s",
				s.StartedAt.Time().Local().Format("15:04"), s.Type, t.snap.BucketName(s.BucketID), formatMinutes(s.ActualMin)))
		}
		if r.LastEnded != nil && r.LastEnded.CloseoutNext != "" {
			rows = append(rows, mutedStyle.Render("last note: "+r.LastEnded.CloseoutNext))
		}
	}
	for _, task := range r.Completed {
		rows = append(rows, successStyle.Render("  ✓ "+task.Title))
	}
	if t.day == dayToday && len(t.loops) > 0 {
		rows = append(rows, "", subtitleStyle.Render("Open loops"))
		for _, task := range t.loops {
			rows = append(rows, fmt.Sprintf("  %s  %s", task.Title, mutedStyle.Render(string(task.State))))
		}
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t todayModel) renderMindDump(w int) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("Mind Dump (%d)", len(t.inbox)))}
	if len(t.inbox) == 0 {
		rows = append(rows, mutedStyle.Render("Empty. Press c to capture."))
	}
	for i, item := range t.inbox {
		cursor := "  "
		style := normalItemStyle
		if i == t.dumpCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+item.Text)+"  "+mutedStyle.Render(formatAgo(t.tracker.Now(), item.CreatedAt)))
	}
	rows = append(rows, "", mutedStyle.Render("  ←/→: slot  s: start  c: capture  t: to task  d: archive  [/]: day"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// planLines renders a nightly plan's picks.
func planLines(snap flow.Snapshot, p flow.Plan) []string {
	var rows []string
	if p.AnchorBucketID != "" {
		line := "anchor:   " + snap.BucketName(p.AnchorBucketID)
		if task, ok := snap.Task(p.AnchorTaskID); ok {
			line += " / " + task.Title
		}
		rows = append(rows, line)
	}
	for _, id := range p.SprintBucketIDs {
		rows = append(rows, "sprint:   "+snap.BucketName(id))
	}
	if p.RecoveryBucketID != "" {
		rows = append(rows, "recovery: "+snap.BucketName(p.RecoveryBucketID))
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("empty plan"))
	}
	return rows
}
