// Package stage mirrors the current directory as a grid of presentable
// objects that appear as they are listed.
package stage

import (
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/google/uuid"
)

// DefaultItemsPerRow is the grid width used when none is given
const DefaultItemsPerRow = 5

// Lister supplies the current directory's children. *filesystem.FileSystem
// satisfies it.
type Lister interface {
	ListCurrent() []filesystem.Node
}

// Object is the presentation state of one node in the current directory
type Object struct {
	ID      uuid.UUID
	Name    string
	Type    filesystem.NodeType
	Row     int
	Col     int
	Visible bool
	// Shown is set once a cat displayed the object's content
	Shown bool
}

// Stage is a result subscriber keyed by node identity
type Stage struct {
	lister      Lister
	itemsPerRow int

	mu      sync.RWMutex
	objects []*Object
	byID    map[uuid.UUID]*Object
}

// New stages the lister's current listing with every object hidden.
// itemsPerRow <= 0 selects DefaultItemsPerRow.
func New(lister Lister, itemsPerRow int) *Stage {
	if itemsPerRow <= 0 {
		itemsPerRow = DefaultItemsPerRow
	}
	s := &Stage{lister: lister, itemsPerRow: itemsPerRow}
	s.restage()
	return s
}

// Handle reacts to successful results only
func (s *Stage) Handle(r vshell.CommandResult) {
	if r.IsError() {
		return
	}
	switch r.Command() {
	case "cd":
		s.restage()
	case "ls":
		s.reveal(r.Nodes())
	case "cat":
		if t := r.Target(); t != nil {
			s.markShown(t.ID())
		}
	}
}

func (s *Stage) restage() {
	logger := util.GetLogger("Stage.restage")

	nodes := s.lister.ListCurrent()
	objects := make([]*Object, len(nodes))
	byID := make(map[uuid.UUID]*Object, len(nodes))
	for i, n := range nodes {
		o := &Object{
			ID:   n.ID(),
			Name: n.Name(),
			Type: n.Type(),
			Row:  i / s.itemsPerRow,
			Col:  i % s.itemsPerRow,
		}
		objects[i] = o
		byID[o.ID] = o
	}

	s.mu.Lock()
	s.objects = objects
	s.byID = byID
	s.mu.Unlock()
	logger.Trace().Int("objects", len(objects)).Msg("Stage rebuilt")
}

// reveal makes the listed nodes visible. Nodes that are not staged (e.g.
// created after the last cd) are ignored.
func (s *Stage) reveal(nodes []filesystem.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if o, ok := s.byID[n.ID()]; ok {
			o.Visible = true
		}
	}
}

func (s *Stage) markShown(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.byID[id]; ok {
		o.Shown = true
	}
}

// Objects returns a snapshot of the staged objects in listing order
func (s *Stage) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = *o
	}
	return out
}
