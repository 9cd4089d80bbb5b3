package shell

import "strings"

// Parse splits a raw line on whitespace runs. The first token is lowercased
// and returned as the command; the rest are positional arguments with their
// case preserved. A blank line yields an empty command and no arguments.
func Parse(raw string) (command string, args []string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
