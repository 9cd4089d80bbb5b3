// Package shell turns raw input lines into command results over the virtual
// file system.
package shell

import (
	"fmt"
	"slices"
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/events"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/internal/util"
)

// Handler runs one command. command is the lowercased token it was
// dispatched under.
type Handler func(fs *filesystem.FileSystem, command string, args []string) vshell.CommandResult

// Interpreter parses lines, dispatches them through its command table and
// publishes exactly one result per line.
type Interpreter struct {
	fs  *filesystem.FileSystem
	bus *events.Bus[vshell.CommandResult]

	mu       sync.RWMutex
	handlers map[string]Handler
}

var _ vshell.LineProcessor = (*Interpreter)(nil)

// NewInterpreter creates an interpreter with the builtin commands registered
func NewInterpreter(fs *filesystem.FileSystem, bus *events.Bus[vshell.CommandResult]) *Interpreter {
	i := &Interpreter{
		fs:       fs,
		bus:      bus,
		handlers: make(map[string]Handler),
	}
	registerBuiltins(i)
	return i
}

// Register binds a handler to a command name, replacing any previous one
func (i *Interpreter) Register(command string, h Handler) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.handlers[command] = h
}

// Commands returns the registered command names, sorted
func (i *Interpreter) Commands() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.handlers))
	for name := range i.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ProcessLine executes raw and publishes the result
func (i *Interpreter) ProcessLine(raw string) {
	i.bus.Publish(i.Execute(raw))
}

// Execute runs raw and returns its result without publishing it
func (i *Interpreter) Execute(raw string) vshell.CommandResult {
	logger := util.GetLogger("Interpreter.Execute")

	command, args := Parse(raw)
	if command == "" {
		return vshell.Success("", "").WithCwd(i.fs.CurrentPath())
	}

	i.mu.RLock()
	h, ok := i.handlers[command]
	i.mu.RUnlock()

	var result vshell.CommandResult
	if !ok {
		result = vshell.Failure(command, filesystem.NewError(filesystem.KindCommandNotFound, command, ""))
	} else {
		result = i.run(h, command, args)
	}

	logger.Debug().
		Str("command", command).
		Strs("args", args).
		Bool("isError", result.IsError()).
		Str("kind", string(result.Kind())).
		Msg("Executed command")
	return result.WithCwd(i.fs.CurrentPath())
}

// run invokes h, converting a panic into an Internal result
func (i *Interpreter) run(h Handler, command string, args []string) (result vshell.CommandResult) {
	defer func() {
		if r := recover(); r != nil {
			logger := util.GetLogger("Interpreter.run")
			logger.Error().Interface("panic", r).Str("command", command).Msg("Command handler panicked")
			result = vshell.Failure(command, filesystem.NewError(filesystem.KindInternal, command, fmt.Sprint(r)))
		}
	}()
	return h(i.fs, command, args)
}
