package cmd

import (
	"sort"
	"strings"
)

// inbandCommands are the words the REPL handles itself instead of sending
// them to the agent.
var inbandCommands = []string{
	"exit",
	"help",
	"quit",
	"reset",
	"set model ",
	"set remote ",
	"set theme ",
	"usage",
}

// CommandCompleter implements readline.AutoCompleter for in-band commands
// and their arguments.
type CommandCompleter struct {
	themes func() []string
	models func() []string
}

// NewCommandCompleter creates a completer. models is called lazily the
// first time a model name is completed and may be nil.
func NewCommandCompleter(themes, models func() []string) *CommandCompleter {
	return &CommandCompleter{themes: themes, models: models}
}

// Do implements readline.AutoCompleter interface
func (c *CommandCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	lineStr := strings.TrimLeft(string(line[:pos]), " ")

	// Argument completion after "set theme " or "set model "
	for _, arg := range []struct {
		cmd    string
		values func() []string
	}{
		{"set theme ", c.themes},
		{"set model ", c.models},
	} {
		if strings.HasPrefix(lineStr, arg.cmd) {
			if arg.values == nil {
				return nil, 0
			}
			return complete(arg.values(), lineStr[len(arg.cmd):])
		}
	}

	// Only complete commands at the start of the line
	if strings.Contains(strings.TrimPrefix(lineStr, "set "), " ") {
		return nil, 0
	}
	return complete(inbandCommands, lineStr)
}

// complete returns the remaining part of every candidate starting with
// prefix, and the prefix length readline should keep.
func complete(candidates []string, prefix string) ([][]rune, int) {
	prefixLower := strings.ToLower(prefix)

	var matches []string
	for _, candidate := range candidates {
		if prefix == "" || strings.HasPrefix(strings.ToLower(candidate), prefixLower) {
			matches = append(matches, candidate)
		}
	}
	sort.Strings(matches)

	out := make([][]rune, 0, len(matches))
	for _, m := range matches {
		out = append(out, []rune(m[len(prefix):]))
	}
	return out, len(prefix)
}
