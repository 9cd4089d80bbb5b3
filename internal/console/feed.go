package console

import (
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/progression"
)

// Feed buffers results and narrative between bubbletea updates. The model
// drains it right after handing a line to the processor.
type Feed struct {
	mu        sync.Mutex
	results   []vshell.CommandResult
	narrative []string
}

func NewFeed() *Feed {
	return &Feed{}
}

// Handle is the bus subscriber
func (f *Feed) Handle(r vshell.CommandResult) {
	f.mu.Lock()
	f.results = append(f.results, r)
	f.mu.Unlock()
}

// QueueNarrative is the milestone subscriber
func (f *Feed) QueueNarrative(m progression.Milestone) {
	f.mu.Lock()
	f.narrative = append(f.narrative, m.Narrative...)
	f.mu.Unlock()
}

// Drain returns and clears everything buffered so far
func (f *Feed) Drain() ([]vshell.CommandResult, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	results, narrative := f.results, f.narrative
	f.results, f.narrative = nil, nil
	return results, narrative
}
