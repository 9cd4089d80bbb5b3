package vshell

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/brettbedarf/vshell/filesystem"
)

// CommandResult is the event published once per processed line. Values are
// immutable; the With* methods return modified copies.
type CommandResult struct {
	command string
	output  string
	isError bool
	kind    filesystem.ErrorKind
	target  filesystem.Node
	nodes   []filesystem.Node
	cwd     string
}

// Success builds a non-error result
func Success(command, output string) CommandResult {
	return CommandResult{command: command, output: output}
}

// Failure builds an error result from err. The message becomes the output and
// a *filesystem.Error contributes its kind and target.
func Failure(command string, err error) CommandResult {
	r := CommandResult{command: command, isError: true, kind: filesystem.KindInternal}
	if err == nil {
		return r
	}
	r.output = err.Error()
	var fsErr *filesystem.Error
	if errors.As(err, &fsErr) {
		r.kind = fsErr.Kind
		r.target = fsErr.Target
	}
	return r
}

// WithTarget returns a copy addressed at n
func (r CommandResult) WithTarget(n filesystem.Node) CommandResult {
	r.target = n
	return r
}

// WithNodes returns a copy carrying a private copy of nodes
func (r CommandResult) WithNodes(nodes []filesystem.Node) CommandResult {
	r.nodes = slices.Clone(nodes)
	return r
}

// WithCwd returns a copy stamped with the working directory path
func (r CommandResult) WithCwd(path string) CommandResult {
	r.cwd = path
	return r
}

// Output is the text to show. Empty means nothing to print.
func (r CommandResult) Output() string { return r.output }

// Nodes returns a copy of the listing payload
func (r CommandResult) Nodes() []filesystem.Node { return slices.Clone(r.nodes) }

func (r CommandResult) IsError() bool { return r.isError }

// Kind is the error kind, empty on success
func (r CommandResult) Kind() filesystem.ErrorKind { return r.kind }

// Command is the lowercased command token, empty for blank input
func (r CommandResult) Command() string { return r.command }

// Target is the node the command addressed, or nil
func (r CommandResult) Target() filesystem.Node { return r.target }

// Cwd is the absolute working directory after the command ran
func (r CommandResult) Cwd() string { return r.cwd }

type nodeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type resultJSON struct {
	Command string               `json:"command"`
	Output  string               `json:"output"`
	Error   bool                 `json:"error"`
	Kind    filesystem.ErrorKind `json:"kind,omitempty"`
	Cwd     string               `json:"cwd,omitempty"`
	Target  *nodeJSON            `json:"target,omitempty"`
	Nodes   []nodeJSON           `json:"nodes,omitempty"`
}

func toNodeJSON(n filesystem.Node) nodeJSON {
	return nodeJSON{ID: n.ID().String(), Name: n.Name(), Type: n.Type().String()}
}

func (r CommandResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Command: r.command,
		Output:  r.output,
		Error:   r.isError,
		Kind:    r.kind,
		Cwd:     r.cwd,
	}
	if r.target != nil {
		t := toNodeJSON(r.target)
		out.Target = &t
	}
	for _, n := range r.nodes {
		out.Nodes = append(out.Nodes, toNodeJSON(n))
	}
	return json.Marshal(out)
}
