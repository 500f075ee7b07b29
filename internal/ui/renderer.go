package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tara-vision/nexus/internal/provider"
	"github.com/tara-vision/nexus/internal/safety"
	"github.com/tara-vision/nexus/internal/storage"
	"github.com/tara-vision/nexus/internal/tools"
)

const maxOutputLines = 15

// Renderer handles all UI output formatting. It is the presenter for the
// agent loop, the console for the safety gate and the notifier for tools.
type Renderer struct {
	out     io.Writer
	spinner *Spinner
	now     func() time.Time
}

// NewRenderer creates a renderer writing to out (stdout when nil). spinner
// may be nil.
func NewRenderer(out io.Writer, spinner *Spinner) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	if spinner == nil {
		spinner = NewSpinnerTo(out, nil)
		spinner.Disable()
	}
	return &Renderer{out: out, spinner: spinner, now: time.Now}
}

// Spinner returns the progress indicator the renderer drives.
func (r *Renderer) Spinner() *Spinner {
	return r.spinner
}

// Header returns the boxed title bar with the current time.
func (r *Renderer) Header() string {
	title := TitleStyle.Render("NEXUS AGENT")
	clock := Subtle.Render(r.now().Format("15.04"))
	gap := 40 - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	return HeaderStyle.Render(title+strings.Repeat(" ", gap)+clock) + "\n"
}

// WelcomeMessage returns the header plus usage hints.
func (r *Renderer) WelcomeMessage() string {
	var sb strings.Builder
	sb.WriteString(r.Header())
	sb.WriteString(Subtle.Render("Type 'help' for commands, 'exit' to quit"))
	sb.WriteString("\n")
	return sb.String()
}

// ProviderMessage formats backend information for display
func (r *Renderer) ProviderMessage(info *provider.Info) string {
	if info == nil {
		return ""
	}
	return SuccessStyle.Render(fmt.Sprintf("%s Connected to %s (%s)", IconSuccess, info.Name, info.Model)) + "\n"
}

// PromptString returns the styled REPL prompt
func (r *Renderer) PromptString() string {
	return PromptStyle.Render("USER ❯") + " "
}

// Busy shows the spinner with label.
func (r *Renderer) Busy(label string) {
	r.spinner.Start(label)
}

// Idle hides the spinner.
func (r *Renderer) Idle() {
	r.spinner.Stop()
}

// Pause implements safety.Indicator.
func (r *Renderer) Pause() {
	r.spinner.Pause()
}

// Resume implements safety.Indicator.
func (r *Renderer) Resume() {
	r.spinner.Resume()
}

// Narrate prints the model's explanation of the tool it is about to run.
func (r *Renderer) Narrate(text string) {
	fmt.Fprintln(r.out, ToolInfo.Render(IconRobot+" "+text))
}

// ToolResult prints a short status for a finished tool call.
func (r *Renderer) ToolResult(tool, result string) {
	if status := r.FormatToolStatus(tool, result); status != "" {
		fmt.Fprintln(r.out, status)
	}
}

// Reply prints the model's final answer as markdown.
func (r *Renderer) Reply(text string) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, RenderMarkdown(text))
	fmt.Fprintln(r.out)
}

// Notice prints a one-line status from the gate or a tool.
func (r *Renderer) Notice(msg string) {
	switch {
	case strings.HasPrefix(msg, "Auto-Fix"):
		fmt.Fprintln(r.out, WarningStyle.Render(IconWarning+" "+msg))
	case strings.HasPrefix(msg, "Auto-Execute"):
		fmt.Fprintln(r.out, SuccessStyle.Bold(true).Render(IconBolt+" "+msg))
	default:
		fmt.Fprintln(r.out, SuccessStyle.Render(IconSuccess+" "+msg))
	}
}

// ManualCopy shows a command the user has to run themselves.
func (r *Renderer) ManualCopy(command string) {
	if strings.TrimSpace(command) == "" {
		return
	}
	body := WarningStyle.Bold(true).Render(IconWarning+" RUN MANUALLY") + "\n" + command
	fmt.Fprintln(r.out, ManualStyle.Render(body))
}

// Clear wipes the terminal and redraws the header.
func (r *Renderer) Clear() {
	fmt.Fprint(r.out, "\033[H\033[2J")
	fmt.Fprint(r.out, r.Header())
}

// FormatToolStatus returns styled tool execution status
func (r *Renderer) FormatToolStatus(tool, result string) string {
	trimmed := strings.TrimSpace(result)
	switch {
	case result == safety.Denied:
		return ToolError.Render(fmt.Sprintf("%s %s: denied", IconError, tool))
	case strings.HasPrefix(trimmed, "Error"):
		return ToolError.Render(fmt.Sprintf("%s %s failed: %s", IconError, tool, firstLine(trimmed)))
	}

	switch tool {
	case tools.RunTerminal, tools.RunRemote:
		where := "Executed"
		if tool == tools.RunRemote {
			where = "Executed remotely"
		}
		if strings.HasPrefix(trimmed, "[SYSTEM]") || strings.HasPrefix(trimmed, "###INTERACTIVE_STOP###") {
			return ToolRead.Render(fmt.Sprintf("%s %s", IconArrow, trimmed))
		}
		return ToolRead.Render(fmt.Sprintf("%s %s", IconArrow, where)) + "\n" + OutputStyle.Render(truncateLines(trimmed, maxOutputLines))

	case tools.CreateFile:
		return ToolRead.Render(fmt.Sprintf("%s %s", IconArrow, trimmed))

	case tools.Search:
		n := strings.Count(result, "TITLE: ")
		if n == 0 {
			return ToolRead.Render(fmt.Sprintf("%s Searched the web (no results)", IconArrow))
		}
		return ToolRead.Render(fmt.Sprintf("%s Searched the web (%d results)", IconArrow, n))

	case tools.AskChoice:
		return ToolInfo.Render(fmt.Sprintf("%s %s", IconArrow, trimmed))

	case tools.GetTimeInfo:
		return ToolRead.Render(fmt.Sprintf("%s %s", IconArrow, trimmed))

	default:
		if trimmed == "" {
			return ToolRead.Render(fmt.Sprintf("%s %s: no result", IconArrow, tool))
		}
		return ToolRead.Render(fmt.Sprintf("%s %s completed", IconArrow, tool))
	}
}

// FormatUsage formats token usage statistics for display
func (r *Renderer) FormatUsage(usage *storage.TokenUsage) string {
	if usage == nil || usage.TotalTokens == 0 {
		return Subtle.Render("No token usage recorded yet.")
	}

	var sb strings.Builder
	sb.WriteString(SessionStyle.Render(IconInfo+" Token Usage") + "\n")
	sb.WriteString(fmt.Sprintf("  Prompt tokens:     %d\n", usage.PromptTokens))
	sb.WriteString(fmt.Sprintf("  Completion tokens: %d\n", usage.CompletionTokens))
	sb.WriteString(fmt.Sprintf("  Total tokens:      %d\n", usage.TotalTokens))
	return sb.String()
}

// HelpText lists the in-band commands.
func (r *Renderer) HelpText() string {
	var sb strings.Builder
	sb.WriteString(Bold.Render("Available commands:") + "\n\n")
	sb.WriteString("  set model [id]    - Switch model (lists served models without an id)\n")
	sb.WriteString("  set theme <name>  - Switch color theme (" + strings.Join(ThemeNames(), ", ") + ")\n")
	sb.WriteString("  set remote <url>  - Set the remote peer used by run_remote\n")
	sb.WriteString("  reset             - Forget the conversation\n")
	sb.WriteString("  usage             - Show token usage statistics\n")
	sb.WriteString("  help              - Show this help message\n")
	sb.WriteString("  exit, quit        - Leave Nexus\n\n")
	sb.WriteString(Subtle.Render("Anything else is sent to the agent. Answer 'y' or 'lanjut' to pre-approve its next commands."))
	sb.WriteString("\n")
	return sb.String()
}

// ErrorMessage formats an error message
func (r *Renderer) ErrorMessage(err error) string {
	return ToolError.Render(fmt.Sprintf("%s Error: %v", IconError, err))
}

// WarningMessage formats a warning message
func (r *Renderer) WarningMessage(msg string) string {
	return WarningStyle.Render(fmt.Sprintf("%s %s", IconWarning, msg))
}

// InfoMessage formats an info message
func (r *Renderer) InfoMessage(msg string) string {
	return SessionStyle.Render(fmt.Sprintf("%s %s", IconInfo, msg))
}

// SuccessMessage formats a success message
func (r *Renderer) SuccessMessage(msg string) string {
	return SuccessStyle.Render(fmt.Sprintf("%s %s", IconSuccess, msg))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncateLines(s string, max int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n... (%d more lines)", len(lines)-max)
}
