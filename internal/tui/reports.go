package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
	"github.com/sadopc/contextflow/internal/store"
	"github.com/sadopc/contextflow/internal/tracker"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportWeekly
	reportStandup
	reportModeCount
)

var reportModeNames = []string{"Daily", "Weekly", "Standup"}

type reportsModel struct {
	tracker *tracker.Tracker
	store   *store.Store
	width   int
	height  int

	mode    reportMode
	rows    []flow.BucketMinutes
	standup []flow.StandupRow
	offset  int // weeks or 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newReportsModel(tr *tracker.Tracker, s *store.Store) reportsModel {
	r := reportsModel{
		tracker: tr,
		store:   s,
		chart:   barchart.New(60, 12),
	}
	r.reload()
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

func (r *reportsModel) reload() {
	snap := r.tracker.Snapshot()
	now := r.tracker.Now()
	if r.mode == reportStandup {
		r.standup = flow.Standup(snap, now)
		return
	}
	from, to := r.dateRange()
	r.rows = flow.DailyMinutes(snap, from, to)
	r.buildChart()
}

func (r reportsModel) weekStart() time.Weekday {
	if r.store == nil {
		return time.Monday
	}
	return r.store.WeekStart()
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	today := flow.StartOfDay(r.tracker.Now())

	switch r.mode {
	case reportWeekly:
		back := (int(today.Weekday()) - int(r.weekStart()) + 7) % 7
		start := today.AddDate(0, 0, -back-7*r.offset)
		return start, start.AddDate(0, 0, 7)
	default:
		end := today.AddDate(0, 0, 1-7*r.offset)
		return end.AddDate(0, 0, -7), end
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotChangedMsg:
		r.reload()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.reload()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.reload()
		case key.Matches(msg, keys.Filter):
			r.mode = (r.mode + 1) % reportModeCount
			r.offset = 0
			r.reload()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")

		var values []barchart.BarValue
		for _, row := range r.rows {
			if row.Date != date {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  row.Name,
				Value: float64(row.Minutes) / 60.0,
				Style: lipgloss.NewStyle().Foreground(bucketColor(row.Color)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range reportModeNames {
		if reportMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	if r.mode == reportStandup {
		header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Reports"), "  ", modeTabs)
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderStandup(w), "", mutedStyle.Render("  f: switch mode"),
		))
	}

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.AddDate(0, 0, -1).Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  f: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if len(r.rows) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %-22s %10s %8s", "Date", "Bucket", "Focus", "Sessions")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 56))),
	}
	total := 0
	for _, row := range r.rows {
		dot := lipgloss.NewStyle().Foreground(bucketColor(row.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %s %-20s %10s %8d",
			row.Date, dot, row.Name, formatMinutes(row.Minutes), row.Sessions,
		))
		total += row.Minutes
	}
	rows = append(rows, accentStyle.Render(fmt.Sprintf("  %-35s %10s", "Total", formatMinutes(total))))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[string]bool)
	var items []string
	for _, row := range r.rows {
		if seen[row.BucketID] {
			continue
		}
		seen[row.BucketID] = true
		dot := lipgloss.NewStyle().Foreground(bucketColor(row.Color)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, row.Name))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

func (r reportsModel) renderStandup(w int) string {
	if len(r.standup) == 0 {
		return mutedStyle.Render("  Nothing moved yesterday and nothing is lined up.")
	}

	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-22s %-24s %-24s %-10s", "Bucket", "Yesterday", "Today", "Tomorrow")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 84))),
	}
	for _, s := range r.standup {
		yesterday := "-"
		if s.Yesterday != nil {
			yesterday = fmt.Sprintf("%d run(s)", s.YesterdayRuns)
			if s.Yesterday.CloseoutNext != "" {
				yesterday = truncate(s.Yesterday.CloseoutNext, 22)
			}
		}
		today := "-"
		switch {
		case s.Active != nil:
			today = truncate(s.Active.Title, 22)
		case len(s.Ready) > 0:
			today = fmt.Sprintf("%d ready", len(s.Ready))
		}
		line := fmt.Sprintf("  %s %-20s %-24s %-24s %-10s",
			bucketDot(s.Bucket), s.Bucket.Name, yesterday, today, string(s.TomorrowRole))
		if s.ActiveStale {
			line += " " + staleBadgeStyle.Render("STALE")
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
