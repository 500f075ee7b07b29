// Package safety decides whether a shell command proposed by the model runs
// straight away, is rewritten first, or waits for the user to confirm it.
//
// These checks are a convenience that saves the user from confirming obvious
// read-only commands and from commands stalling on prompts. They are not a
// security boundary: anything the user approves runs with their privileges.
package safety

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tara-vision/nexus/internal/logger"
)

// Result sentinels the model and the user see.
const (
	Denied           = "Denied."
	SuccessNoOutput  = "[Success (No Output)]"
	ScreenCleared    = "[SYSTEM]: Screen cleared."
	InteractiveStop  = "###INTERACTIVE_STOP### The script needs manual input; run it yourself."
	missingNote      = "\n[SYSTEM NOTE]: The command failed or was not found. The package may not be installed."
	manualRunPattern = "[SYSTEM]: Run '%s' manually in your own shell."
)

// Verdict is the classification of a command.
type Verdict string

const (
	VerdictSafe        Verdict = "safe"
	VerdictConfirm     Verdict = "confirm"
	VerdictManual      Verdict = "manual"
	VerdictInteractive Verdict = "interactive"
	VerdictClear       Verdict = "clear"
)

// Outcome describes what the gate did with a command.
type Outcome struct {
	Original  string
	Command   string
	Rewritten bool
	Verdict   Verdict
	Approved  bool
	Executed  bool
	ExitCode  int
	Output    string
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Indicator is a progress display that must not draw over a prompt.
type Indicator interface {
	Pause()
	Resume()
}

// Console receives the gate's user-facing notices.
type Console interface {
	Notice(msg string)
	ManualCopy(command string)
	Clear()
}

// Gate runs shell commands on behalf of the model.
type Gate struct {
	Rewriter  Rewriter
	Shell     Shell
	Prompter  Prompter
	Indicator Indicator
	Console   Console
}

// Execute passes a command through the rewrite, blocklist, classification
// and confirmation steps, runs it if allowed and shapes the textual result.
// It never returns an error: failures are described in Outcome.Output.
func (g *Gate) Execute(ctx context.Context, command string, autoApprove bool) Outcome {
	out := Outcome{Original: command}

	rewritten, changed := g.Rewriter.Rewrite(command)
	out.Command = rewritten
	out.Rewritten = changed
	if changed {
		g.notice(fmt.Sprintf("Auto-Fix: '%s' -> '%s'", strings.TrimSpace(command), rewritten))
		logger.Debug("command rewritten", "from", command, "to", rewritten)
	}

	out.Verdict = Classify(rewritten)
	switch out.Verdict {
	case VerdictClear:
		if g.Console != nil {
			g.Console.Clear()
		}
		out.Output = ScreenCleared
		return out
	case VerdictManual:
		if g.Console != nil {
			g.withPaused(func() { g.Console.ManualCopy(rewritten) })
		}
		out.Output = fmt.Sprintf(manualRunPattern, rewritten)
		return out
	case VerdictInteractive:
		if g.Console != nil {
			g.withPaused(func() { g.Console.ManualCopy(rewritten) })
		}
		out.Output = InteractiveStop
		return out
	case VerdictConfirm:
		if autoApprove {
			g.notice("Auto-Execute: " + rewritten)
		} else {
			approved, err := g.confirm(rewritten)
			if err != nil {
				logger.Warn("confirmation failed", "command", rewritten, "error", err)
			}
			if !approved {
				out.Output = Denied
				return out
			}
		}
	}

	out.Approved = true
	out.Output, out.ExitCode = g.run(ctx, rewritten)
	out.Executed = true
	return out
}

func (g *Gate) run(ctx context.Context, command string) (string, int) {
	if g.Shell == nil {
		return "Error: no shell configured", -1
	}
	output, code, err := g.Shell.Run(ctx, command)
	if err != nil {
		if strings.TrimSpace(output) != "" {
			return fmt.Sprintf("%s\nError: %v", output, err), code
		}
		return fmt.Sprintf("Error: %v", err), code
	}
	return ShapeOutput(output, code), code
}

// ShapeOutput turns raw process output into a tool result that is never
// empty and flags missing binaries or files.
func ShapeOutput(output string, exitCode int) string {
	if exitCode != 0 && strings.TrimSpace(output) == "" {
		output = fmt.Sprintf("Error: Command exited with code %d", exitCode)
	}
	if strings.Contains(output, "command not found") || strings.Contains(output, "No such file") {
		output += missingNote
	}
	if strings.TrimSpace(output) == "" {
		return SuccessNoOutput
	}
	return output
}

func (g *Gate) confirm(command string) (bool, error) {
	if g.Prompter == nil {
		return false, fmt.Errorf("no prompter available")
	}
	var (
		approved bool
		err      error
	)
	g.withPaused(func() {
		approved, err = g.Prompter.Confirm(fmt.Sprintf("Run this command? (%s)", command))
	})
	return approved, err
}

func (g *Gate) notice(msg string) {
	if g.Console == nil {
		return
	}
	g.withPaused(func() { g.Console.Notice(msg) })
}

func (g *Gate) withPaused(fn func()) {
	if g.Indicator != nil {
		g.Indicator.Pause()
		defer g.Indicator.Resume()
	}
	fn()
}

var safePrefixes = []string{
	"ls", "echo", "whoami", "pwd", "date", "neofetch", "cat", "grep",
	"pkg search", "pkg list-installed", "which", "type", "uname", "id",
}

var (
	compoundSyntax  = regexp.MustCompile("[;&|<>`]|\\$\\(")
	readBuiltin     = regexp.MustCompile(`(^|[\s;&|(])read(\s|$)`)
	versionSubflags = map[string]bool{"-v": true, "-V": true, "version": true}
)

// Classify decides how a (rewritten) command is handled.
func Classify(command string) Verdict {
	cmd := strings.TrimSpace(command)
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return VerdictConfirm
	}

	switch {
	case cmd == "clear" || cmd == "cls":
		return VerdictClear
	case fields[0] == "cd" || fields[0] == "source" || fields[0] == ".":
		return VerdictManual
	case strings.Contains(cmd, "input(") || readBuiltin.MatchString(cmd):
		return VerdictInteractive
	}

	if IsSafe(cmd) {
		return VerdictSafe
	}
	return VerdictConfirm
}

// IsSafe reports whether a command is a read-only query that may run without
// confirmation.
func IsSafe(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" || compoundSyntax.MatchString(cmd) {
		return false
	}
	for _, prefix := range safePrefixes {
		if cmd == prefix || strings.HasPrefix(cmd, prefix+" ") {
			return true
		}
	}

	fields := strings.Fields(cmd)
	for _, f := range fields[1:] {
		if f == "--version" {
			return true
		}
	}
	return len(fields) == 2 && versionSubflags[fields[1]]
}
