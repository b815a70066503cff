package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/contextflow/internal/flow"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorAccent    = lipgloss.Color("#FF6B6B")
	colorMuted     = lipgloss.Color("#666666")
	colorSuccess   = lipgloss.Color("#2ECC71")
	colorWarning   = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorBg        = lipgloss.Color("#1A1B26")
	colorFg        = lipgloss.Color("#C0CAF5")
	colorSubtle    = lipgloss.Color("#414868")
	colorHighlight = lipgloss.Color("#7AA2F7")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Timer
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	timerRunningStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSuccess).
				Align(lipgloss.Center)

	timerPausedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWarning).
				Align(lipgloss.Center)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	accentStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	highlightStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// Status
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	// Badges
	resumeBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBg).
				Background(colorSuccess).
				Padding(0, 1)

	staleBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBg).
			Background(colorWarning).
			Padding(0, 1)
)

// bucketPalette maps the named bucket colors to hex.
var bucketPalette = map[string]string{
	"blue":    "#3B82F6",
	"indigo":  "#6366F1",
	"emerald": "#10B981",
	"slate":   "#64748B",
	"orange":  "#F97316",
	"purple":  "#A855F7",
	"teal":    "#14B8A6",
	"pink":    "#EC4899",
	"rose":    "#F43F5E",
	"red":     "#EF4444",
	"amber":   "#F59E0B",
	"green":   "#22C55E",
	"cyan":    "#06B6D4",
	"violet":  "#8B5CF6",
}

func bucketColor(name string) lipgloss.Color {
	if strings.HasPrefix(name, "#") {
		return lipgloss.Color(name)
	}
	if hex, ok := bucketPalette[strings.ToLower(name)]; ok {
		return lipgloss.Color(hex)
	}
	return colorMuted
}

func bucketDot(b flow.Bucket) string {
	return lipgloss.NewStyle().Foreground(bucketColor(b.Color)).Render("●")
}

func renderBadge(b flow.Badge) string {
	switch b {
	case flow.BadgeResume:
		return resumeBadgeStyle.Render(b.String())
	case flow.BadgeStale:
		return staleBadgeStyle.Render(b.String())
	}
	return ""
}
