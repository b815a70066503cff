package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/export"
	"github.com/sadopc/contextflow/internal/store"
	"github.com/sadopc/contextflow/internal/tracker"
)

var exportFormats = []string{"CSV", "JSON", "Snapshot"}

// App is the root Bubble Tea model.
type App struct {
	tracker *tracker.Tracker
	store   *store.Store
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today    todayModel
	buckets  bucketsModel
	plan     planModel
	reports  reportsModel
	settings settingsModel
	session  sessionModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(tr *tracker.Tracker, s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	return App{
		tracker:    tr,
		store:      s,
		activeView: viewToday,
		today:      newTodayModel(tr),
		buckets:    newBucketsModel(tr),
		plan:       newPlanModel(tr),
		reports:    newReportsModel(tr, s),
		settings:   newSettingsModel(s),
		session:    newSessionModel(tr, s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.buckets.setSize(a.width, contentHeight)
		a.plan.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.session.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// A session in progress owns the keyboard.
		if a.session.active() {
			var cmd tea.Cmd
			a.session, cmd = a.session.update(msg)
			return a, cmd
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Capture):
			// Capture works from every tab and lands on Today.
			var cmd tea.Cmd
			a.activeView = viewToday
			a.today, cmd = a.today.showCaptureForm()
			return a, cmd
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewToday
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewBuckets
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewPlan
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			a.settings.reload()
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case tickMsg:
		var cmd tea.Cmd
		a.session, cmd = a.session.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case startSessionMsg:
		var cmd tea.Cmd
		a.session, cmd = a.session.open(msg)
		return a, cmd

	case snapshotChangedMsg:
		a.today.reload()
		a.buckets.reload()
		a.plan.reload()
		a.reports.reload()
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case sessionDoneMsg:
		a.activeView = viewToday
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	if a.session.active() {
		var cmd tea.Cmd
		a.session, cmd = a.session.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewBuckets:
		a.buckets, cmd = a.buckets.update(msg)
	case viewPlan:
		a.plan, cmd = a.plan.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewBuckets:
		return a.buckets.formActive
	case viewPlan:
		return a.plan.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.session.active():
		content = a.session.view()
	case a.activeView == viewToday:
		content = a.today.view()
	case a.activeView == viewBuckets:
		content = a.buckets.view()
	case a.activeView == viewPlan:
		content = a.plan.view()
	case a.activeView == viewReports:
		content = a.reports.view()
	case a.activeView == viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("contextflow")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if a.session.timer.running() {
		elapsed := a.session.timer.currentElapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.session.timer.paused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		home, _ := os.UserHomeDir()
		return a, a.doExport(a.exportCursor, home)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the full history in the chosen format into dir.
func (a App) doExport(format int, dir string) tea.Cmd {
	snap := a.tracker.Snapshot()
	date := a.tracker.Now().Format("2006-01-02")
	return func() tea.Msg {
		var path string
		var err error
		switch format {
		case 0:
			path = filepath.Join(dir, fmt.Sprintf("contextflow-export-%s.csv", date))
			err = export.ToCSV(snap.Sessions, snap, path)
		case 1:
			path = filepath.Join(dir, fmt.Sprintf("contextflow-export-%s.json", date))
			err = export.ToJSON(snap.Sessions, snap, path)
		default:
			path = filepath.Join(dir, fmt.Sprintf("contextflow-snapshot-%s.json", date))
			err = export.ToSnapshot(snap, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
