package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/tracker"
)

type bucketsModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	snap    flow.Snapshot
	badges  map[string]flow.Badge
	buckets []flow.Bucket
	tasks   []flow.Task

	filter       int // 0 = all, otherwise index into flow.Categories + 1
	cursor       int
	taskCursor   int
	viewingTasks bool

	formActive bool
	form       *huh.Form
	formType   string // "task", "move", "workspace"
	formErr    string

	// Form field pointers (survive value copies)
	editingID     string
	formTitle     *string
	formState     *flow.TaskState
	formNext      *string
	formDone      *string
	formNotes     *string
	formMilestone *string
	formLinks     *string
	formChecks    *string
}

func newBucketsModel(tr *tracker.Tracker) bucketsModel {
	title, next, done, notes, ms, links, checks := "", "", "", "", "", "", ""
	state := flow.StateInbox
	m := bucketsModel{
		tracker:       tr,
		formTitle:     &title,
		formState:     &state,
		formNext:      &next,
		formDone:      &done,
		formNotes:     &notes,
		formMilestone: &ms,
		formLinks:     &links,
		formChecks:    &checks,
	}
	m.reload()
	return m
}

func (b *bucketsModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b *bucketsModel) reload() {
	b.snap = b.tracker.Snapshot()
	b.badges = b.tracker.Badges()
	if b.filter == 0 {
		b.buckets = b.snap.Buckets
	} else {
		b.buckets = b.snap.BucketsIn(flow.Categories[b.filter-1])
	}
	if b.cursor >= len(b.buckets) {
		b.cursor = max(0, len(b.buckets)-1)
	}
	b.tasks = nil
	if sel, ok := b.selected(); ok {
		b.tasks = b.snap.TasksIn(sel.ID)
	}
	if b.taskCursor >= len(b.tasks) {
		b.taskCursor = max(0, len(b.tasks)-1)
	}
}

func (b bucketsModel) selected() (flow.Bucket, bool) {
	if b.cursor < len(b.buckets) {
		return b.buckets[b.cursor], true
	}
	return flow.Bucket{}, false
}

func (b bucketsModel) update(msg tea.Msg) (bucketsModel, tea.Cmd) {
	if b.formActive && b.form != nil {
		return b.updateForm(msg)
	}

	switch msg := msg.(type) {
	case snapshotChangedMsg:
		b.reload()
		return b, nil

	case tea.KeyMsg:
		if b.viewingTasks {
			return b.updateTaskView(msg)
		}
		return b.updateBucketList(msg)
	}
	return b, nil
}

func (b bucketsModel) updateBucketList(msg tea.KeyMsg) (bucketsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(msg, keys.Down):
		if b.cursor < len(b.buckets)-1 {
			b.cursor++
		}
	case key.Matches(msg, keys.Filter):
		b.filter = (b.filter + 1) % (len(flow.Categories) + 1)
		b.cursor = 0
	case key.Matches(msg, keys.Enter):
		if len(b.buckets) > 0 {
			b.viewingTasks = true
			b.taskCursor = 0
		}
	case key.Matches(msg, keys.New):
		if len(b.buckets) > 0 {
			return b.showTaskForm(nil)
		}
	case key.Matches(msg, keys.Workspace):
		if len(b.buckets) > 0 {
			return b.showWorkspaceForm()
		}
	case key.Matches(msg, keys.Start):
		if sel, ok := b.selected(); ok {
			return b, func() tea.Msg { return startSessionMsg{bucket: sel, typ: defaultSessionType(sel.Category)} }
		}
	}
	b.reload()
	return b, nil
}

func (b bucketsModel) updateTaskView(msg tea.KeyMsg) (bucketsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		b.viewingTasks = false
	case key.Matches(msg, keys.Up):
		if b.taskCursor > 0 {
			b.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if b.taskCursor < len(b.tasks)-1 {
			b.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return b.showTaskForm(nil)
	case key.Matches(msg, keys.Enter):
		if len(b.tasks) > 0 {
			t := b.tasks[b.taskCursor]
			return b.showTaskForm(&t)
		}
	case key.Matches(msg, keys.Move):
		if len(b.tasks) > 0 {
			return b.showMoveForm()
		}
	case key.Matches(msg, keys.Start):
		if sel, ok := b.selected(); ok {
			var task *flow.Task
			if len(b.tasks) > 0 {
				t := b.tasks[b.taskCursor]
				task = &t
			}
			return b, func() tea.Msg {
				return startSessionMsg{bucket: sel, task: task, typ: defaultSessionType(sel.Category)}
			}
		}
	}
	return b, nil
}

func taskStateOptions() []huh.Option[flow.TaskState] {
	opts := make([]huh.Option[flow.TaskState], len(flow.TaskStates))
	for i, s := range flow.TaskStates {
		label := string(s)
		if flow.RequiresReadiness(s) {
			label += " (needs next action + done)"
		}
		opts[i] = huh.NewOption(label, s)
	}
	return opts
}

func (b bucketsModel) milestoneOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("none", "")}
	for _, m := range b.snap.Milestones {
		label := m.Title
		if g, ok := b.snap.Goal(m.GoalID); ok {
			label = g.Title + " > " + m.Title
		}
		opts = append(opts, huh.NewOption(label, m.ID))
	}
	return opts
}

// showTaskForm opens the task editor, for a new task when t is nil.
func (b bucketsModel) showTaskForm(t *flow.Task) (bucketsModel, tea.Cmd) {
	b.formErr = ""
	b.formType = "task"
	b.editingID = ""
	*b.formTitle, *b.formNext, *b.formDone, *b.formNotes, *b.formMilestone = "", "", "", "", ""
	*b.formState = flow.StateInbox
	if t != nil {
		b.editingID = t.ID
		*b.formTitle = t.Title
		*b.formState = t.State
		*b.formNext = t.NextAction
		*b.formDone = t.DoneDefinition
		*b.formNotes = t.Notes
		*b.formMilestone = t.MilestoneID
	}
	return b.buildTaskForm()
}

func (b bucketsModel) buildTaskForm() (bucketsModel, tea.Cmd) {
	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(b.formTitle).Validate(required("title")),
			huh.NewSelect[flow.TaskState]().Title("State").Options(taskStateOptions()...).Value(b.formState),
			huh.NewInput().Title("Next action").
				Description("The first physical step").Value(b.formNext),
			huh.NewInput().Title("Done when").
				Description("How you will know it is finished").Value(b.formDone),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Milestone").Options(b.milestoneOptions()...).Value(b.formMilestone),
			huh.NewText().Title("Notes").Lines(3).Value(b.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)
	b.formActive = true
	return b, b.form.Init()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (b bucketsModel) showMoveForm() (bucketsModel, tea.Cmd) {
	t := b.tasks[b.taskCursor]
	b.formErr = ""
	b.formType = "move"
	b.editingID = t.ID
	*b.formState = t.State
	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[flow.TaskState]().Title("Move " + t.Title).
				Options(taskStateOptions()...).Value(b.formState),
		),
	).WithShowHelp(true).WithShowErrors(true)
	b.formActive = true
	return b, b.form.Init()
}

func (b bucketsModel) showWorkspaceForm() (bucketsModel, tea.Cmd) {
	sel, _ := b.selected()
	ws, ok := b.snap.WorkspaceFor(sel.ID)
	if !ok {
		return b, func() tea.Msg {
			return statusMsg{text: "No workspace for " + sel.Name, isError: true}
		}
	}
	b.formErr = ""
	b.formType = "workspace"
	b.editingID = ws.ID
	*b.formLinks = formatLinks(ws.Links)
	*b.formChecks = strings.Join(ws.StartupChecklist, "\n")
	b.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Links").
				Description("One per line: label | url").
				Lines(5).Value(b.formLinks),
			huh.NewText().Title("Startup checklist").
				Description("One item per line").
				Lines(5).Value(b.formChecks),
		),
	).WithShowHelp(true).WithShowErrors(true)
	b.formActive = true
	return b, b.form.Init()
}

func formatLinks(links []flow.WorkspaceLink) string {
	lines := make([]string, len(links))
	for i, l := range links {
		lines[i] = l.Label + " | " + l.URL
	}
	return strings.Join(lines, "\n")
}

// applyWorkspaceText rebuilds ws links and checklist from the editor text.
// Existing links keep their IDs when label and url are unchanged.
func applyWorkspaceText(ws flow.Workspace, links, checklist string) (flow.Workspace, error) {
	existing := make(map[string]string, len(ws.Links))
	for _, l := range ws.Links {
		existing[l.Label+"\x00"+l.URL] = l.ID
	}
	out := ws
	out.Links = []flow.WorkspaceLink{}
	out.StartupChecklist = []string{}

	for _, line := range strings.Split(links, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label, url, ok := strings.Cut(line, "|")
		if !ok {
			return ws, fmt.Errorf("%w: link %q needs \"label | url\"", flow.ErrInvalid, line)
		}
		label, url = strings.TrimSpace(label), strings.TrimSpace(url)
		if id, ok := existing[label+"\x00"+url]; ok {
			out.Links = append(out.Links, flow.WorkspaceLink{ID: id, Label: label, URL: url})
			continue
		}
		var err error
		if out, err = out.AddLink(label, url); err != nil {
			return ws, err
		}
	}
	for _, line := range strings.Split(checklist, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var err error
		if out, err = out.AddChecklistItem(line); err != nil {
			return ws, err
		}
	}
	return out, nil
}

func (b bucketsModel) updateForm(msg tea.Msg) (bucketsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			b.formActive = false
			b.form = nil
			b.formErr = ""
			return b, nil
		}
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
	}
	if b.form.State != huh.StateCompleted {
		return b, cmd
	}

	b.formActive = false
	b.form = nil
	sel, _ := b.selected()

	switch b.formType {
	case "task":
		draft := flow.Task{
			ID:             b.editingID,
			BucketID:       sel.ID,
			Title:          *b.formTitle,
			State:          *b.formState,
			NextAction:     strings.TrimSpace(*b.formNext),
			DoneDefinition: strings.TrimSpace(*b.formDone),
			Notes:          *b.formNotes,
			MilestoneID:    *b.formMilestone,
		}
		if b.editingID != "" {
			if old, ok := b.snap.Task(b.editingID); ok {
				draft.BucketID = old.BucketID
				draft.Links = old.Links
				draft.CreatedAt = old.CreatedAt
			}
		}
		if _, err := b.tracker.SaveTask(draft); err != nil {
			if errors.Is(err, flow.ErrNotReady) || errors.Is(err, flow.ErrInvalid) {
				// keep the editor open with what was typed
				b.formErr = err.Error()
				var initCmd tea.Cmd
				b, initCmd = b.buildTaskForm()
				return b, tea.Batch(initCmd, errStatus(err))
			}
			return b, errStatus(err)
		}
		return b, changed("Task saved")

	case "move":
		t, err := b.tracker.MoveTask(b.editingID, *b.formState)
		if err != nil {
			return b, errStatus(err)
		}
		return b, changed(fmt.Sprintf("%s is now %s", t.Title, t.State))

	case "workspace":
		ws, _ := b.snap.WorkspaceFor(sel.ID)
		ws, err := applyWorkspaceText(ws, *b.formLinks, *b.formChecks)
		if err != nil {
			return b, errStatus(err)
		}
		if err := b.tracker.SaveWorkspace(ws); err != nil {
			return b, errStatus(err)
		}
		return b, changed("Workspace saved")
	}
	return b, nil
}

func (b bucketsModel) view() string {
	w := b.width - 4
	if b.formActive && b.form != nil {
		sel, _ := b.selected()
		title := "New Task"
		switch {
		case b.formType == "workspace":
			title = sel.Name + " Workspace"
		case b.formType == "move":
			title = "Move Task"
		case b.editingID != "":
			title = "Edit Task"
		}
		rows := []string{titleStyle.Render(title)}
		if b.formErr != "" {
			rows = append(rows, errorStyle.Render(b.formErr))
		}
		rows = append(rows, "", b.form.View())
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	if b.viewingTasks {
		return b.renderTaskView(w)
	}
	return b.renderBucketList(w)
}

func (b bucketsModel) filterLabel() string {
	if b.filter == 0 {
		return "All"
	}
	return string(flow.Categories[b.filter-1])
}

func (b bucketsModel) renderBucketList(w int) string {
	title := titleStyle.Render("Buckets") + "  " + mutedStyle.Render("["+b.filterLabel()+"]")
	if len(b.buckets) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No buckets in this category. Press f to change filter.")))
	}

	now := b.tracker.Now()
	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-18s %-6s %-10s", "", "Name", "Category", "Tasks", "Last")))
	for i, bk := range b.buckets {
		cursor := "  "
		style := normalItemStyle
		if i == b.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		last := "never"
		if s, ok := b.snap.LastSession(bk.ID); ok {
			last = formatAgo(now, s.StartedAt)
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %-18s %-6d %-10s",
			cursor, bucketDot(bk), bk.Name, bk.Category, len(b.snap.TasksIn(bk.ID)), last))
		if badge := renderBadge(b.badges[bk.ID]); badge != "" {
			row += " " + badge
		}
		rows = append(rows, row)
	}
	rows = append(rows, "", mutedStyle.Render("  enter: tasks  n: new task  w: workspace  s: start  f: filter"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (b bucketsModel) renderTaskView(w int) string {
	sel, _ := b.selected()
	title := titleStyle.Render(fmt.Sprintf("%s %s / Tasks", bucketDot(sel), sel.Name))
	if len(b.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No tasks. Press n to add one.")))
	}

	now := b.tracker.Now()
	rows := []string{title, ""}
	for i, t := range b.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == b.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		state := mutedStyle.Render(fmt.Sprintf("[%s]", t.State))
		if flow.IsStaleTask(t, now) {
			state = warningStyle.Render(fmt.Sprintf("[%s stale]", t.State))
		}
		rows = append(rows, style.Render(cursor+t.Title)+" "+state)
		if i == b.taskCursor && t.NextAction != "" {
			rows = append(rows, mutedStyle.Render("    next: "+t.NextAction))
		}
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  enter: edit  m: move  s: start  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
