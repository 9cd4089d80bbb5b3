package console

import (
	"time"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/internal/stage"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth = 26
	inputLimit = 256
)

// Options holds the presentation settings of the interactive console
type Options struct {
	Prompt      string
	CursorChar  string
	CursorBlink time.Duration // 0 keeps the cursor steady
	Scrollback  int           // lines kept; <= 0 keeps everything
}

// StageView supplies the side panel. *stage.Stage satisfies it.
type StageView interface {
	Objects() []stage.Object
}

// Model is the bubbletea model of an interactive session.
type Model struct {
	processor vshell.LineProcessor
	feed      *Feed
	stage     StageView // may be nil
	opts      Options
	styles    styles

	// UI State
	Input      textinput.Model
	Viewport   viewport.Model
	Lines      []string
	WindowSize tea.WindowSizeMsg
	CursorOn   bool

	// Narrative holds lines still to be acknowledged. Narrative[0] is on
	// screen; input is disabled until the queue is empty.
	Narrative []string
}

// blinkMsg toggles the cursor
type blinkMsg struct{}

// NewModel creates a model that hands submitted lines to p and reads what
// they produced back from feed. feed must be subscribed to the same session.
func NewModel(p vshell.LineProcessor, feed *Feed, sv StageView, opts Options) Model {
	if opts.Prompt == "" {
		opts.Prompt = ">"
	}
	if opts.CursorChar == "" {
		opts.CursorChar = "_"
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = inputLimit
	ti.Cursor.SetMode(cursor.CursorHide)
	ti.Focus()

	return Model{
		processor: p,
		feed:      feed,
		stage:     sv,
		opts:      opts,
		styles:    newStyles(lipgloss.DefaultRenderer()),
		Input:     ti,
		Viewport:  viewport.New(80, 20),
		CursorOn:  true,
	}
}

// Init starts the cursor blink
func (m Model) Init() tea.Cmd {
	return m.blink()
}

func (m Model) blink() tea.Cmd {
	if m.opts.CursorBlink <= 0 {
		return nil
	}
	return tea.Tick(m.opts.CursorBlink, func(time.Time) tea.Msg { return blinkMsg{} })
}

// Playing reports whether narrative is waiting to be acknowledged
func (m Model) Playing() bool {
	return len(m.Narrative) > 0
}
