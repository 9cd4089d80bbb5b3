// Package policy gates input lines before they reach the interpreter.
package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/events"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/brettbedarf/vshell/shell"
	"github.com/puzpuzpuz/xsync/v4"
)

// Filter forwards a line to the next processor only when its command is
// allowed and neither the command nor "command firstarg" is blocked.
// Rejected lines publish an error result directly.
type Filter struct {
	next    vshell.LineProcessor
	bus     *events.Bus[vshell.CommandResult]
	allowed *xsync.Map[string, struct{}]
	blocked *xsync.Map[string, struct{}]
	cwd     func() string
}

var _ vshell.LineProcessor = (*Filter)(nil)

// Option configures a Filter
type Option func(*Filter)

// WithAllowed seeds the allow set
func WithAllowed(commands ...string) Option {
	return func(f *Filter) {
		for _, c := range commands {
			f.Allow(c)
		}
	}
}

// WithBlocked seeds the block set
func WithBlocked(literals ...string) Option {
	return func(f *Filter) {
		for _, l := range literals {
			f.Block(l)
		}
	}
}

// WithCwd sets the source used to stamp rejected results with the working
// directory
func WithCwd(fn func() string) Option {
	return func(f *Filter) { f.cwd = fn }
}

// NewFilter wraps next. With no options every command is rejected.
func NewFilter(next vshell.LineProcessor, bus *events.Bus[vshell.CommandResult], opts ...Option) *Filter {
	f := &Filter{
		next:    next,
		bus:     bus,
		allowed: xsync.NewMap[string, struct{}](),
		blocked: xsync.NewMap[string, struct{}](),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// normalize lowercases and collapses whitespace so "CD   Home" and
// "cd home" name the same literal
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ProcessLine applies the policy to raw. Blank lines are dropped silently.
func (f *Filter) ProcessLine(raw string) {
	logger := util.GetLogger("Filter.ProcessLine")

	command, args := shell.Parse(raw)
	if command == "" {
		return
	}
	token := strings.Fields(raw)[0]

	if err := f.check(command, token, args); err != nil {
		logger.Debug().Str("command", command).Str("kind", string(err.Kind)).Msg("Line rejected")
		r := vshell.Failure(command, err)
		if f.cwd != nil {
			r = r.WithCwd(f.cwd())
		}
		f.bus.Publish(r)
		return
	}
	f.next.ProcessLine(raw)
}

// check returns the rejection for a line, if any. Messages echo the command
// token as typed.
func (f *Filter) check(command, token string, args []string) *filesystem.Error {
	if _, ok := f.blocked.Load(command); ok {
		return filesystem.NewError(filesystem.KindBlocked, token, "")
	}
	if len(args) > 0 {
		literal := command + " " + strings.ToLower(args[0])
		if _, ok := f.blocked.Load(literal); ok {
			return filesystem.NewError(filesystem.KindBlocked, token,
				fmt.Sprintf("Command execution blocked: %s %s", token, args[0]))
		}
	}
	if _, ok := f.allowed.Load(command); !ok {
		return filesystem.NewError(filesystem.KindNotAllowed, token, "")
	}
	return nil
}

// Allow adds command to the allow set and reports whether it was absent
func (f *Filter) Allow(command string) bool {
	_, loaded := f.allowed.LoadOrStore(normalize(command), struct{}{})
	if !loaded {
		logger := util.GetLogger("Filter.Allow")
		logger.Debug().Str("command", normalize(command)).Msg("Command unlocked")
	}
	return !loaded
}

// Disallow removes command from the allow set and reports whether it was present
func (f *Filter) Disallow(command string) bool {
	_, loaded := f.allowed.LoadAndDelete(normalize(command))
	if loaded {
		logger := util.GetLogger("Filter.Disallow")
		logger.Debug().Str("command", normalize(command)).Msg("Command locked")
	}
	return loaded
}

// Block adds a "command" or "command firstarg" literal to the block set
func (f *Filter) Block(literal string) bool {
	_, loaded := f.blocked.LoadOrStore(normalize(literal), struct{}{})
	return !loaded
}

// Unblock removes a literal from the block set
func (f *Filter) Unblock(literal string) bool {
	_, loaded := f.blocked.LoadAndDelete(normalize(literal))
	return loaded
}

// IsAllowed reports whether command is in the allow set
func (f *Filter) IsAllowed(command string) bool {
	_, ok := f.allowed.Load(normalize(command))
	return ok
}

// Allowed returns the allow set, sorted
func (f *Filter) Allowed() []string {
	return keys(f.allowed)
}

// Blocked returns the block set, sorted
func (f *Filter) Blocked() []string {
	return keys(f.blocked)
}

func keys(m *xsync.Map[string, struct{}]) []string {
	out := make([]string, 0, m.Size())
	m.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	slices.Sort(out)
	return out
}
