package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	prompt    lipgloss.Style
	echo      lipgloss.Style
	err       lipgloss.Style
	narrative lipgloss.Style
	hint      lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	hidden    lipgloss.Style
	shown     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		prompt:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		echo:      r.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
		err:       r.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		narrative: r.NewStyle().Italic(true).Foreground(lipgloss.Color("#F5D76E")),
		hint:      r.NewStyle().Faint(true),
		panel:     r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		title:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")),
		hidden:    r.NewStyle().Faint(true),
		shown:     r.NewStyle().Underline(true),
	}
}
