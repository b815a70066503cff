package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	anchorMinutes   *string
	sprintMinutes   *string
	recoveryMinutes *string
	idleTimeout     *string
	weekStart       *string
}

func newSettingsModel(s *store.Store) settingsModel {
	am, sm, rm, it, ws := "", "", "", "", ""
	m := settingsModel{
		store:           s,
		anchorMinutes:   &am,
		sprintMinutes:   &sm,
		recoveryMinutes: &rm,
		idleTimeout:     &it,
		weekStart:       &ws,
	}
	m.reload()
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) reload() {
	settings, err := s.store.GetAllSettings()
	if err != nil {
		return
	}
	s.settings = settings
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.anchorMinutes = s.getVal("anchor_minutes", "50")
	*s.sprintMinutes = s.getVal("sprint_minutes", "20")
	*s.recoveryMinutes = s.getVal("recovery_minutes", "15")
	*s.idleTimeout = secsToMin(s.getVal("idle_timeout", "300"))
	*s.weekStart = s.getVal("week_start", "monday")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Anchor (min)").Value(s.anchorMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Sprint (min)").Value(s.sprintMinutes).Validate(validateMinutes),
			huh.NewInput().Title("Recovery (min)").Value(s.recoveryMinutes).Validate(validateMinutes),
		).Title("Session lengths"),
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min)").
				Description("0 disables auto-pause").
				Value(s.idleTimeout).Validate(validateNonNegative),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter 0 or more minutes")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, errStatus(err)
		}
		s.reload()
		return s, status("Settings saved")
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := []store.Setting{
		{Key: "anchor_minutes", Value: strings.TrimSpace(*s.anchorMinutes)},
		{Key: "sprint_minutes", Value: strings.TrimSpace(*s.sprintMinutes)},
		{Key: "recovery_minutes", Value: strings.TrimSpace(*s.recoveryMinutes)},
		{Key: "idle_timeout", Value: minToSecs(strings.TrimSpace(*s.idleTimeout))},
		{Key: "week_start", Value: *s.weekStart},
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return fmt.Errorf("save %s: %w", v.Key, err)
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			if secs == 0 {
				return "off"
			}
			return fmt.Sprintf("%d min", secs/60)
		}
	case "anchor_minutes", "sprint_minutes", "recovery_minutes":
		return v + " min"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
