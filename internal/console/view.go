package console

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/vshell/filesystem"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	left := lipgloss.JoinVertical(lipgloss.Left, m.Viewport.View(), m.inputLine())
	if m.stage == nil {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.stagePanel())
}

func (m Model) inputLine() string {
	if m.Playing() {
		return m.styles.hint.Render("[Enter] continue")
	}
	cur := " "
	if m.CursorOn {
		cur = m.opts.CursorChar
	}
	return m.styles.prompt.Render(m.opts.Prompt) + " " + m.Input.Value() + cur
}

// stagePanel lists the objects revealed so far, one grid row per line
func (m Model) stagePanel() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Around you"))

	row, seen := -1, 0
	for _, o := range m.stage.Objects() {
		if !o.Visible {
			continue
		}
		seen++
		if o.Row != row {
			row = o.Row
			b.WriteString("\n")
		} else {
			b.WriteString("  ")
		}
		icon := "·"
		if o.Type == filesystem.DirNodeType {
			icon = "▸"
		}
		label := fmt.Sprintf("%s %s", icon, o.Name)
		if o.Shown {
			label = m.styles.shown.Render(label)
		}
		b.WriteString(label)
	}
	if seen == 0 {
		b.WriteString("\n" + m.styles.hidden.Render("nothing yet (try ls)"))
	}

	height := max(m.WindowSize.Height-2, 3)
	return m.styles.panel.Width(panelWidth).Height(height).Render(b.String())
}
