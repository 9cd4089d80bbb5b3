package console

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WindowSize = msg
		m.resize()
		return m, nil

	case blinkMsg:
		m.CursorOn = !m.CursorOn
		return m, m.blink()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit
		}

		if m.Playing() {
			if msg.Type == tea.KeyEnter {
				m.advance()
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit runs the typed line and collects what it produced
func (m *Model) submit() {
	line := m.Input.Value()
	m.Input.Reset()
	m.appendLines(m.styles.prompt.Render(m.opts.Prompt) + " " + m.styles.echo.Render(line))

	m.processor.ProcessLine(line)

	results, narrative := m.feed.Drain()
	for _, r := range results {
		text, ok := resultText(r)
		if !ok {
			continue
		}
		for _, l := range strings.Split(text, "\n") {
			if r.IsError() {
				l = m.styles.err.Render(l)
			}
			m.appendLines(l)
		}
	}
	if len(narrative) > 0 {
		m.Narrative = append(m.Narrative, narrative...)
		m.showNarrative()
	}
	m.refresh()
}

// advance acknowledges the narrative line on screen
func (m *Model) advance() {
	m.Narrative = m.Narrative[1:]
	if len(m.Narrative) > 0 {
		m.showNarrative()
	}
	m.refresh()
}

func (m *Model) showNarrative() {
	for _, l := range strings.Split(m.Narrative[0], "\n") {
		m.appendLines(m.styles.narrative.Render(l))
	}
}

func (m *Model) appendLines(lines ...string) {
	m.Lines = append(m.Lines, lines...)
	if n := m.opts.Scrollback; n > 0 && len(m.Lines) > n {
		m.Lines = append([]string(nil), m.Lines[len(m.Lines)-n:]...)
	}
}

func (m *Model) refresh() {
	m.Viewport.SetContent(strings.Join(m.Lines, "\n"))
	m.Viewport.GotoBottom()
}

func (m *Model) resize() {
	width := m.WindowSize.Width
	if m.stage != nil {
		width -= panelWidth + 2
	}
	m.Viewport.Width = max(width, 20)
	// one row for the input line
	m.Viewport.Height = max(m.WindowSize.Height-1, 3)
	m.Input.Width = max(m.Viewport.Width-len(m.opts.Prompt)-2, 1)
	m.refresh()
}
