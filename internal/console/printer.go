// Package console renders command results for a player, either as plain
// lines on a writer or as an interactive terminal program.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/brettbedarf/vshell/progression"
	"github.com/charmbracelet/lipgloss"
)

// resultText returns what a result prints. Empty output prints nothing and a
// single trailing newline is dropped.
func resultText(r vshell.CommandResult) (string, bool) {
	out := r.Output()
	if out == "" {
		return "", false
	}
	return strings.TrimSuffix(out, "\n"), true
}

type narrativeJSON struct {
	Milestone string   `json:"milestone"`
	Narrative []string `json:"narrative"`
}

// Printer is a result subscriber for non-interactive use. Narrative queued by
// the tracker is written after the result that triggered it.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	json    bool
	styles  styles
	pending []progression.Milestone
}

// NewPrinter writes to out. In JSON mode every result and narrative is one
// JSON object per line.
func NewPrinter(out io.Writer, jsonMode bool) *Printer {
	return &Printer{
		out:    out,
		json:   jsonMode,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Handle prints r followed by any pending narrative
func (p *Printer) Handle(r vshell.CommandResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		p.writeJSON(r)
	} else if text, ok := resultText(r); ok {
		if r.IsError() {
			text = p.styles.err.Render(text)
		}
		fmt.Fprintln(p.out, text)
	}
	p.flush()
}

// QueueNarrative holds m's narrative until the next result is printed
func (p *Printer) QueueNarrative(m progression.Milestone) {
	if len(m.Narrative) == 0 {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, m)
	p.mu.Unlock()
}

// flush must be called with mu held
func (p *Printer) flush() {
	for _, m := range p.pending {
		if p.json {
			p.writeJSON(narrativeJSON{Milestone: m.ID, Narrative: m.Narrative})
			continue
		}
		for _, line := range m.Narrative {
			fmt.Fprintln(p.out, p.styles.narrative.Render(line))
		}
	}
	p.pending = nil
}

func (p *Printer) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger := util.GetLogger("Printer.writeJSON")
		logger.Error().Err(err).Msg("Failed to encode output")
		return
	}
	data = append(data, '\n')
	if _, err := p.out.Write(data); err != nil {
		logger := util.GetLogger("Printer.writeJSON")
		logger.Warn().Err(err).Msg("Failed to write output")
	}
}
