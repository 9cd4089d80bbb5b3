package progression

import (
	"path"
	"strings"

	"github.com/brettbedarf/vshell"
)

// Milestone IDs of the default table
const (
	EnterHome    = "EnterHome"
	FindUnlocked = "FindUnlocked"
	CatUnlocked  = "CatUnlocked"
)

// Trigger describes the successful result that achieves a milestone. Empty
// fields match anything.
type Trigger struct {
	Command string `yaml:"command" json:"command"`
	// Target is compared case-insensitively with the result's target name
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	// Cwd is compared case-insensitively with the base name of the working
	// directory after the command ran
	Cwd      string   `yaml:"cwd,omitempty" json:"cwd,omitempty"`
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// Effects are applied to the gate when a milestone is achieved
type Effects struct {
	Allow    []string `yaml:"allow,omitempty" json:"allow,omitempty"`
	Disallow []string `yaml:"disallow,omitempty" json:"disallow,omitempty"`
	Block    []string `yaml:"block,omitempty" json:"block,omitempty"`
	Unblock  []string `yaml:"unblock,omitempty" json:"unblock,omitempty"`
}

// Milestone is one row of the progression table
type Milestone struct {
	ID        string   `yaml:"id" json:"id"`
	Trigger   Trigger  `yaml:"trigger" json:"trigger"`
	Effects   Effects  `yaml:"effects,omitempty" json:"effects,omitempty"`
	Narrative []string `yaml:"narrative,omitempty" json:"narrative,omitempty"`
}

// matches reports whether r satisfies the trigger, ignoring requirements
func (t Trigger) matches(r vshell.CommandResult) bool {
	if r.IsError() {
		return false
	}
	if t.Command != "" && !strings.EqualFold(t.Command, r.Command()) {
		return false
	}
	if t.Target != "" {
		target := r.Target()
		if target == nil || !strings.EqualFold(t.Target, target.Name()) {
			return false
		}
	}
	if t.Cwd != "" && !strings.EqualFold(t.Cwd, path.Base(r.Cwd())) {
		return false
	}
	return true
}

// DefaultMilestones returns the built-in progression: entering /home, then
// copying find and cat into /bin to unlock them.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{
			ID:      EnterHome,
			Trigger: Trigger{Command: "cd", Cwd: "home"},
			Narrative: []string{
				"This is the /home directory...",
				"The intruder seems to have hidden some files here.\nTry `ls` to look around.",
			},
		},
		{
			ID:      FindUnlocked,
			Trigger: Trigger{Command: "cp", Target: "find", Cwd: "home", Requires: []string{EnterHome}},
			Effects: Effects{Allow: []string{"find"}},
			Narrative: []string{
				"The find command was copied to /bin and is now available!",
				"Usage: find <filename>",
			},
		},
		{
			ID:      CatUnlocked,
			Trigger: Trigger{Command: "cp", Target: "cat", Cwd: "core", Requires: []string{EnterHome}},
			Effects: Effects{Allow: []string{"cat"}},
			Narrative: []string{
				"The cat command was copied to /bin.",
				"You can now read the contents of files.",
			},
		},
	}
}
