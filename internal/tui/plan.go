package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/tracker"
)

// planModel edits tomorrow's nightly plan and this week's outcomes.
type planModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	snap    flow.Snapshot
	nightly *flow.Plan
	weekly  *flow.Plan

	formActive bool
	form       *huh.Form
	formType   string // "nightly", "weekly"

	formAnchor   *string
	formTask     *string
	formSprint   *[]string
	formRecovery *string
	formOutcomes [flow.MaxOutcomes]*string
}

func newPlanModel(tr *tracker.Tracker) planModel {
	anchor, task, recovery := "", "", ""
	sprint := []string{}
	m := planModel{
		tracker:      tr,
		formAnchor:   &anchor,
		formTask:     &task,
		formSprint:   &sprint,
		formRecovery: &recovery,
	}
	for i := range m.formOutcomes {
		s := ""
		m.formOutcomes[i] = &s
	}
	m.reload()
	return m
}

func (p *planModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p planModel) tomorrow() time.Time {
	return p.tracker.Now().AddDate(0, 0, 1)
}

func (p *planModel) reload() {
	p.snap = p.tracker.Snapshot()
	p.nightly, p.weekly = nil, nil
	if n, ok := p.snap.Plan(flow.PlanNightly, flow.NightlyKey(p.tomorrow())); ok {
		p.nightly = &n
	}
	if w, ok := p.snap.Plan(flow.PlanWeekly, flow.WeeklyKey(p.tracker.Now())); ok {
		p.weekly = &w
	}
}

func (p planModel) update(msg tea.Msg) (planModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case snapshotChangedMsg:
		p.reload()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.New):
			return p.showNightlyForm()
		case key.Matches(msg, keys.Weekly):
			return p.showWeeklyForm()
		}
	}
	return p, nil
}

// anchorTaskOptions lists Ready and Doing tasks, labelled by bucket.
func (p planModel) anchorTaskOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("none", "")}
	for _, t := range p.snap.Tasks {
		if t.State != flow.StateReady && t.State != flow.StateDoing {
			continue
		}
		opts = append(opts, huh.NewOption(p.snap.BucketName(t.BucketID)+": "+t.Title, t.ID))
	}
	return opts
}

func withNone(opts []huh.Option[string]) []huh.Option[string] {
	return append([]huh.Option[string]{huh.NewOption("none", "")}, opts...)
}

func (p planModel) showNightlyForm() (planModel, tea.Cmd) {
	*p.formAnchor, *p.formTask, *p.formRecovery = "", "", ""
	*p.formSprint = []string{}
	if p.nightly != nil {
		*p.formAnchor = p.nightly.AnchorBucketID
		*p.formTask = p.nightly.AnchorTaskID
		*p.formSprint = append([]string{}, p.nightly.SprintBucketIDs...)
		*p.formRecovery = p.nightly.RecoveryBucketID
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Anchor bucket").
				Description("Deep work for tomorrow").
				Options(withNone(bucketOptions(p.snap.BucketsIn(flow.MainWork)))...).
				Value(p.formAnchor),
			huh.NewSelect[string]().Title("Anchor task").
				Options(p.anchorTaskOptions()...).
				Value(p.formTask),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().Title("Sprint buckets").
				Description(fmt.Sprintf("Pick up to %d", flow.MaxSprintBuckets)).
				Options(bucketOptions(p.snap.Buckets)...).
				Limit(flow.MaxSprintBuckets).
				Value(p.formSprint),
			huh.NewSelect[string]().Title("Recovery bucket").
				Options(withNone(bucketOptions(p.snap.BucketsIn(flow.SelfCare)))...).
				Value(p.formRecovery),
		),
	).WithShowHelp(true).WithShowErrors(true)
	p.formType = "nightly"
	p.formActive = true
	return p, p.form.Init()
}

func (p planModel) showWeeklyForm() (planModel, tea.Cmd) {
	for i := range p.formOutcomes {
		*p.formOutcomes[i] = ""
		if p.weekly != nil && i < len(p.weekly.Outcomes) {
			*p.formOutcomes[i] = p.weekly.Outcomes[i]
		}
	}
	fields := make([]huh.Field, len(p.formOutcomes))
	for i, v := range p.formOutcomes {
		fields[i] = huh.NewInput().Title(fmt.Sprintf("Outcome %d", i+1)).Value(v)
	}
	p.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	p.formType = "weekly"
	p.formActive = true
	return p, p.form.Init()
}

func (p planModel) updateForm(msg tea.Msg) (planModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}
	p.formActive = false
	p.form = nil

	switch p.formType {
	case "nightly":
		plan := flow.Plan{
			Type:             flow.PlanNightly,
			DateKey:          flow.NightlyKey(p.tomorrow()),
			AnchorBucketID:   *p.formAnchor,
			AnchorTaskID:     *p.formTask,
			SprintBucketIDs:  *p.formSprint,
			RecoveryBucketID: *p.formRecovery,
		}
		if _, err := p.tracker.SavePlan(plan); err != nil {
			return p, errStatus(err)
		}
		return p, changed("Plan saved for " + plan.DateKey)

	case "weekly":
		var outcomes []string
		for _, v := range p.formOutcomes {
			if s := strings.TrimSpace(*v); s != "" {
				outcomes = append(outcomes, s)
			}
		}
		plan := flow.Plan{
			Type:     flow.PlanWeekly,
			DateKey:  flow.WeeklyKey(p.tracker.Now()),
			Outcomes: outcomes,
		}
		if _, err := p.tracker.SavePlan(plan); err != nil {
			return p, errStatus(err)
		}
		return p, changed("Outcomes saved for " + plan.DateKey)
	}
	return p, nil
}

func (p planModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := "Plan Tomorrow"
		if p.formType == "weekly" {
			title = "Weekly Outcomes"
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title), "", p.form.View()))
	}

	nightly := []string{titleStyle.Render("Tomorrow  " + mutedStyle.Render(flow.NightlyKey(p.tomorrow()))), ""}
	if p.nightly == nil {
		nightly = append(nightly, mutedStyle.Render("Nothing planned. Press n to plan tomorrow."))
	} else {
		nightly = append(nightly, planLines(p.snap, *p.nightly)...)
	}

	weekly := []string{titleStyle.Render("This Week  " + mutedStyle.Render(flow.WeeklyKey(p.tracker.Now()))), ""}
	if p.weekly == nil || len(p.weekly.Outcomes) == 0 {
		weekly = append(weekly, mutedStyle.Render("No outcomes set. Press o to set up to 3."))
	} else {
		for i, o := range p.weekly.Outcomes {
			weekly = append(weekly, fmt.Sprintf("%d. %s", i+1, o))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(strings.Join(nightly, "\n")),
		panelStyle.Width(w).Render(strings.Join(weekly, "\n")),
		mutedStyle.Render("  n: plan tomorrow  o: weekly outcomes"),
	)
}
