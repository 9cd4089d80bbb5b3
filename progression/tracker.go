// Package progression unlocks commands as milestones are reached.
package progression

import (
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/events"
	"github.com/brettbedarf/vshell/internal/util"
)

// Gate receives milestone effects. Implemented by *policy.Filter.
type Gate interface {
	Allow(command string) bool
	Disallow(command string) bool
	Block(literal string) bool
	Unblock(literal string) bool
}

// Tracker evaluates results against an ordered milestone table. At most one
// milestone is achieved per result: the first unachieved row that matches
// and whose requirements are all met.
type Tracker struct {
	milestones []Milestone
	gate       Gate // may be nil
	listeners  *events.Bus[Milestone]

	mu       sync.Mutex
	achieved map[string]struct{}
	order    []string
}

// NewTracker creates a tracker. gate may be nil when no policy is in force.
func NewTracker(milestones []Milestone, gate Gate) *Tracker {
	return &Tracker{
		milestones: append([]Milestone(nil), milestones...),
		gate:       gate,
		listeners:  events.NewBus[Milestone](),
		achieved:   make(map[string]struct{}),
	}
}

// OnAchieved registers fn to be called after each achievement, once its
// effects have been applied
func (t *Tracker) OnAchieved(fn func(Milestone)) events.Subscription {
	return t.listeners.Subscribe(fn)
}

// Handle is the bus subscriber
func (t *Tracker) Handle(r vshell.CommandResult) {
	if r.IsError() {
		return
	}
	m, ok := t.evaluate(r)
	if !ok {
		return
	}

	logger := util.GetLogger("Tracker.Handle")
	logger.Info().Str("milestone", m.ID).Str("command", r.Command()).Str("cwd", r.Cwd()).Msg("Milestone achieved")

	t.apply(m.Effects)
	t.listeners.Publish(m)
}

// evaluate marks and returns the first matching milestone
func (t *Tracker) evaluate(r vshell.CommandResult) (Milestone, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range t.milestones {
		if _, done := t.achieved[m.ID]; done {
			continue
		}
		if !t.requirementsMet(m.Trigger.Requires) || !m.Trigger.matches(r) {
			continue
		}
		t.achieved[m.ID] = struct{}{}
		t.order = append(t.order, m.ID)
		return m, true
	}
	return Milestone{}, false
}

// requirementsMet must be called with mu held
func (t *Tracker) requirementsMet(ids []string) bool {
	for _, id := range ids {
		if _, ok := t.achieved[id]; !ok {
			return false
		}
	}
	return true
}

func (t *Tracker) apply(e Effects) {
	if t.gate == nil {
		return
	}
	for _, c := range e.Allow {
		t.gate.Allow(c)
	}
	for _, c := range e.Disallow {
		t.gate.Disallow(c)
	}
	for _, l := range e.Block {
		t.gate.Block(l)
	}
	for _, l := range e.Unblock {
		t.gate.Unblock(l)
	}
}

// Achieved reports whether the milestone id has been reached
func (t *Tracker) Achieved(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.achieved[id]
	return ok
}

// AchievedIDs returns achieved milestone IDs in the order they were reached
func (t *Tracker) AchievedIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// Milestones returns the table the tracker evaluates
func (t *Tracker) Milestones() []Milestone {
	return append([]Milestone(nil), t.milestones...)
}
