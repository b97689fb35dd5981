package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the colours and shared styles of the viewer. Styles are built
// from Renderer so that tests can force a colour profile.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Comment   lipgloss.AdaptiveColor
	String    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	BarBg     lipgloss.AdaptiveColor

	Node     lipgloss.Style
	Selected lipgloss.Style
	Edge     lipgloss.Style
	Hidden   lipgloss.Style
	Fading   lipgloss.Style
}

// DefaultTheme returns the standard palette rendered through r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"},
		Highlight: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
		Text:      lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E7EB"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#374151", Dark: "#9CA3AF"},
		Muted:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"},
		Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
		Comment:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"},
		String:    lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"},
		Error:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		BarBg:     lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"},
	}
	t.Node = r.NewStyle().Foreground(t.Text)
	t.Selected = r.NewStyle().Foreground(t.Highlight).Bold(true).Reverse(true)
	t.Edge = r.NewStyle().Foreground(t.Muted)
	t.Hidden = r.NewStyle().Foreground(t.Primary)
	t.Fading = r.NewStyle().Foreground(t.Muted).Faint(true)
	return t
}
