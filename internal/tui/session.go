package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/store"
	"github.com/sadopc/contextflow/internal/tracker"
)

type sessionPhase int

const (
	sessionIdle sessionPhase = iota
	sessionPrep
	sessionActive
	sessionCloseout
)

var phaseNames = map[sessionPhase]string{
	sessionIdle:     "IDLE",
	sessionPrep:     "PREP",
	sessionActive:   "ACTIVE",
	sessionCloseout: "CLOSEOUT",
}

var energyOptions = []huh.Option[int]{
	huh.NewOption("1 drained", 1),
	huh.NewOption("2 low", 2),
	huh.NewOption("3 steady", 3),
	huh.NewOption("4 good", 4),
	huh.NewOption("5 sharp", 5),
}

// sessionModel is the overlay that runs one session: prep, the timed block,
// then the closeout that feeds the next re-entry.
type sessionModel struct {
	tracker *tracker.Tracker
	store   *store.Store
	width   int
	height  int

	phase     sessionPhase
	bucket    flow.Bucket
	task      *flow.Task
	last      *flow.Session
	workspace flow.Workspace
	startedAt time.Time

	timer timerModel
	form  *huh.Form

	// Form values as pointers (survive value copies)
	typ          *flow.SessionType
	planned      *string
	energyBefore *int
	energyAfter  *int
	finished     *string
	next         *string
	firstAction  *string
}

func newSessionModel(tr *tracker.Tracker, s *store.Store) sessionModel {
	typ := flow.SessionAnchor
	planned, finished, next, first := "", "", "", ""
	before, after := 3, 3
	return sessionModel{
		tracker:      tr,
		store:        s,
		timer:        newTimerModel(s.IdleTimeout()),
		typ:          &typ,
		planned:      &planned,
		energyBefore: &before,
		energyAfter:  &after,
		finished:     &finished,
		next:         &next,
		firstAction:  &first,
	}
}

func (m *sessionModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m sessionModel) active() bool { return m.phase != sessionIdle }

// open moves to prep for the requested bucket.
func (m sessionModel) open(msg startSessionMsg) (sessionModel, tea.Cmd) {
	snap := m.tracker.Snapshot()
	m.phase = sessionPrep
	m.bucket = msg.bucket
	m.task = msg.task
	m.last = nil
	if last, ok := snap.LastSession(msg.bucket.ID); ok {
		m.last = &last
	}
	m.workspace, _ = snap.WorkspaceFor(msg.bucket.ID)
	m.timer.idleTimeout = m.store.IdleTimeout()

	typ := msg.typ
	if !typ.Valid() {
		typ = defaultSessionType(msg.bucket.Category)
	}
	*m.typ = typ
	*m.planned = strconv.Itoa(m.store.PlannedMinutes(typ))
	*m.energyBefore = 3
	*m.energyAfter = 3
	*m.finished, *m.next, *m.firstAction = "", "", ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[flow.SessionType]().Title("Session type").
				Options(
					huh.NewOption("Anchor (deep work)", flow.SessionAnchor),
					huh.NewOption("Sprint (short push)", flow.SessionSprint),
					huh.NewOption("Recovery", flow.SessionRecovery),
				).Value(m.typ),
			huh.NewInput().Title("Planned minutes").Value(m.planned).Validate(validateMinutes),
			huh.NewSelect[int]().Title("Energy before").Options(energyOptions...).Value(m.energyBefore),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number of minutes")
	}
	return nil
}

func (m sessionModel) update(msg tea.Msg) (sessionModel, tea.Cmd) {
	if _, ok := msg.(tickMsg); ok {
		m.timer.tick()
		return m, nil
	}

	switch m.phase {
	case sessionPrep:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.phase = sessionIdle
			m.form = nil
			return m, status("Session cancelled")
		}
		return m.updateForm(msg, m.begin)

	case sessionActive:
		k, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}
		wasIdle := m.timer.isIdle
		m.timer.recordActivity()
		switch {
		case key.Matches(k, keys.Pause):
			// returning from idle already resumed the timer
			if !wasIdle {
				m.timer.toggle()
			}
		case key.Matches(k, keys.Stop):
			return m.closeout()
		}
		return m, nil

	case sessionCloseout:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			return m.record()
		}
		return m.updateForm(msg, m.record)
	}
	return m, nil
}

func (m sessionModel) updateForm(msg tea.Msg, done func() (sessionModel, tea.Cmd)) (sessionModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return done()
	}
	return m, cmd
}

func (m sessionModel) begin() (sessionModel, tea.Cmd) {
	m.phase = sessionActive
	m.form = nil
	m.timer.start()
	m.startedAt = m.timer.startTime
	return m, status(fmt.Sprintf("%s session started in %s", *m.typ, m.bucket.Name))
}

func (m sessionModel) closeout() (sessionModel, tea.Cmd) {
	m.timer.pause()
	m.phase = sessionCloseout
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("What did you finish?").Value(m.finished),
			huh.NewInput().Title("What's next?").Value(m.next),
			huh.NewInput().Title("First action next time").
				Description("The smallest physical step to restart").Value(m.firstAction),
			huh.NewSelect[int]().Title("Energy after").Options(energyOptions...).Value(m.energyAfter),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

// record stores the finished session. Actual minutes are whole focused
// minutes, rounded down.
func (m sessionModel) record() (sessionModel, tea.Cmd) {
	elapsed := m.timer.stop()
	planned, _ := strconv.Atoi(strings.TrimSpace(*m.planned))
	sess := flow.Session{
		BucketID:            m.bucket.ID,
		Type:                *m.typ,
		PlannedMin:          planned,
		ActualMin:           int(elapsed / time.Minute),
		EnergyBefore:        *m.energyBefore,
		EnergyAfter:         *m.energyAfter,
		CloseoutFinished:    strings.TrimSpace(*m.finished),
		CloseoutNext:        strings.TrimSpace(*m.next),
		CloseoutFirstAction: strings.TrimSpace(*m.firstAction),
		StartedAt:           flow.At(m.startedAt),
	}
	if m.task != nil {
		sess.TaskID = m.task.ID
	}
	m.phase = sessionIdle
	m.form = nil

	saved, err := m.tracker.CompleteSession(sess)
	if err != nil {
		return m, errStatus(err)
	}
	return m, tea.Batch(
		func() tea.Msg { return sessionDoneMsg{session: saved} },
		changed(fmt.Sprintf("Logged %s in %s", formatMinutes(saved.ActualMin), m.bucket.Name)),
	)
}

func (m sessionModel) view() string {
	w := m.width - 4
	title := titleStyle.Render(fmt.Sprintf("%s %s", bucketDot(m.bucket), m.bucket.Name))
	if m.task != nil {
		title += mutedStyle.Render(" / " + m.task.Title)
	}
	phase := mutedStyle.Render(phaseNames[m.phase])

	var body string
	switch m.phase {
	case sessionPrep:
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderPrep(), "", m.form.View())
	case sessionActive:
		body = m.renderActive(w)
	case sessionCloseout:
		body = lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(fmt.Sprintf("Focused for %s", formatDuration(m.timer.currentElapsed()))),
			"",
			m.form.View(),
			"",
			mutedStyle.Render("esc: save without notes"),
		)
	}
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title+"  "+phase, "", body),
	)
}

func (m sessionModel) renderPrep() string {
	var rows []string
	if m.last != nil && m.last.CloseoutFirstAction != "" {
		rows = append(rows, highlightStyle.Render("Start with: ")+m.last.CloseoutFirstAction)
		if m.last.CloseoutNext != "" {
			rows = append(rows, mutedStyle.Render("  then: "+m.last.CloseoutNext))
		}
		rows = append(rows, "")
	} else if m.task != nil && m.task.NextAction != "" {
		rows = append(rows, highlightStyle.Render("Next action: ")+m.task.NextAction, "")
	}
	if len(m.workspace.StartupChecklist) > 0 {
		rows = append(rows, subtitleStyle.Render("Startup checklist"))
		for _, item := range m.workspace.StartupChecklist {
			rows = append(rows, "  ☐ "+item)
		}
	}
	if len(m.workspace.Links) > 0 {
		rows = append(rows, subtitleStyle.Render("Links"))
		for _, l := range m.workspace.Links {
			rows = append(rows, fmt.Sprintf("  %s  %s", l.Label, mutedStyle.Render(l.URL)))
		}
	}
	return strings.Join(rows, "\n")
}

func (m sessionModel) renderActive(w int) string {
	elapsed := formatDuration(m.timer.currentElapsed())
	var clock, indicator string
	switch {
	case m.timer.paused() && m.timer.isIdle:
		clock = timerPausedStyle.Width(w - 6).Render(elapsed)
		indicator = warningStyle.Render("⏸  IDLE")
	case m.timer.paused():
		clock = timerPausedStyle.Width(w - 6).Render(elapsed)
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		clock = timerRunningStyle.Width(w - 6).Render(elapsed)
		indicator = successStyle.Render("●  " + string(*m.typ))
	}
	planned := mutedStyle.Render("planned " + *m.planned + " min")
	if p, err := strconv.Atoi(*m.planned); err == nil && m.timer.currentElapsed() >= time.Duration(p)*time.Minute {
		planned = accentStyle.Render("planned time reached")
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		clock, indicator, planned, "",
		mutedStyle.Render("space: pause/resume  x: end and close out"),
	)
}
