// Package vshell contains the core contracts shared by the shell components:
// the inbound line contract and the result event every command produces.
package vshell

// LineProcessor accepts one raw input line. Implementations publish exactly
// one [CommandResult] for it, or none when the line is filtered out.
type LineProcessor interface {
	ProcessLine(raw string)
}

// LineProcessorFunc adapts a plain function to [LineProcessor]
type LineProcessorFunc func(raw string)

func (f LineProcessorFunc) ProcessLine(raw string) { f(raw) }
