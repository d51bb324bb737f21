package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#101F38")
	Accent  = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#64748b")
	Danger  = lipgloss.Color("#e53935")
)

type Styles struct {
	Brand    lipgloss.Style
	Badge    lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Price    lipgloss.Style
	Muted    lipgloss.Style
	Panel    lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Brand:    lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Badge:    lipgloss.NewStyle().Foreground(Accent).Italic(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Normal:   lipgloss.NewStyle(),
		Price:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1),
		Error: lipgloss.NewStyle().Foreground(Danger),
		Help:  lipgloss.NewStyle().Foreground(Muted).Faint(true),
	}
}
