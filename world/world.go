// Package world loads the declarative description of the initial tree,
// command policy and progression table.
package world

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/brettbedarf/vshell/progression"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultWorld []byte

// Entry types
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry describes one node of the initial tree. Type may be omitted: entries
// with children are directories, everything else is a file.
type Entry struct {
	Name     string  `yaml:"name" json:"name"`
	Type     string  `yaml:"type,omitempty" json:"type,omitempty"`
	Content  string  `yaml:"content,omitempty" json:"content,omitempty"`
	Children []Entry `yaml:"children,omitempty" json:"children,omitempty"`
}

func (e Entry) isDir() bool {
	return e.Type == TypeDir || (e.Type == "" && len(e.Children) > 0)
}

// Policy is the initial command gate
type Policy struct {
	Allow []string `yaml:"allow" json:"allow"`
	Block []string `yaml:"block,omitempty" json:"block,omitempty"`
}

// World is a complete starting state
type World struct {
	Tree      []Entry                    `yaml:"tree" json:"tree"`
	WellKnown map[filesystem.Role]string `yaml:"well_known,omitempty" json:"well_known,omitempty"`
	// Policy is nil when the world puts no restriction on commands
	Policy     *Policy                 `yaml:"policy,omitempty" json:"policy,omitempty"`
	Milestones []progression.Milestone `yaml:"milestones,omitempty" json:"milestones,omitempty"`
}

// Default returns the embedded world
func Default() (*World, error) {
	w, err := Parse(defaultWorld, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("embedded world: %w", err)
	}
	return w, nil
}

// Load reads a world file. YAML (.yaml, .yml) and JSON (.json) are supported.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes and validates a world in the format named by ext
func Parse(data []byte, ext string) (*World, error) {
	var w World
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal world: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("failed to unmarshal world: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown world file extension: %q", ext)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate checks names, entry types and milestone references
func (w *World) Validate() error {
	var errs []error
	var walk func(prefix string, entries []Entry)
	walk = func(prefix string, entries []Entry) {
		for _, e := range entries {
			p := prefix + "/" + e.Name
			switch {
			case e.Name == "", e.Name == ".", e.Name == "..", e.Name == "~", strings.ContainsAny(e.Name, "/ \t\n"):
				errs = append(errs, fmt.Errorf("invalid entry name %q under %q", e.Name, prefix+"/"))
				continue
			case e.Type != "" && e.Type != TypeFile && e.Type != TypeDir:
				errs = append(errs, fmt.Errorf("%s: unknown type %q", p, e.Type))
			case e.Type == TypeFile && len(e.Children) > 0:
				errs = append(errs, fmt.Errorf("%s: file cannot have children", p))
			case e.isDir() && e.Content != "":
				errs = append(errs, fmt.Errorf("%s: directory cannot have content", p))
			}
			walk(p, e.Children)
		}
	}
	walk("", w.Tree)

	seen := make(map[string]struct{}, len(w.Milestones))
	for _, m := range w.Milestones {
		if m.ID == "" {
			errs = append(errs, errors.New("milestone without id"))
			continue
		}
		if _, dup := seen[m.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate milestone %q", m.ID))
		}
		seen[m.ID] = struct{}{}
	}
	for _, m := range w.Milestones {
		for _, req := range m.Trigger.Requires {
			if _, ok := seen[req]; !ok {
				errs = append(errs, fmt.Errorf("milestone %q requires unknown milestone %q", m.ID, req))
			}
		}
	}
	return errors.Join(errs...)
}

// Populate inserts the tree under root. Every entry is attempted; conflicts
// and other insert failures are returned together.
func (w *World) Populate(root *filesystem.Directory) error {
	return populate(root, w.Tree)
}

func populate(dir *filesystem.Directory, entries []Entry) error {
	var errs []error
	for _, e := range entries {
		if !e.isDir() {
			if err := dir.Insert(filesystem.NewFile(e.Name, e.Content)); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		sub := filesystem.NewDirectory(e.Name)
		if err := dir.Insert(sub); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := populate(sub, e.Children); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build creates a file system seeded from the world with its well-known
// directories registered
func (w *World) Build() (*filesystem.FileSystem, error) {
	logger := util.GetLogger("World.Build")

	fs, err := filesystem.NewFS(w)
	if err != nil {
		return nil, err
	}

	roles := make([]filesystem.Role, 0, len(w.WellKnown))
	for role := range w.WellKnown {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	for _, role := range roles {
		if err := fs.RegisterWellKnown(role, w.WellKnown[role]); err != nil {
			return nil, fmt.Errorf("register %s: %w", role, err)
		}
		logger.Debug().Str("role", string(role)).Str("path", w.WellKnown[role]).Msg("Registered well-known directory")
	}
	return fs, nil
}
