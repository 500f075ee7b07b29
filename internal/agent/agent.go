// Package agent runs the bounded query → tool → query loop for each user
// turn.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tara-vision/nexus/internal/action"
	"github.com/tara-vision/nexus/internal/llm"
	"github.com/tara-vision/nexus/internal/logger"
	"github.com/tara-vision/nexus/internal/tools"
)

const DefaultMaxSteps = 5

// Model produces the raw model answer for the given turns.
type Model interface {
	Query(ctx context.Context, turns []llm.Turn) string
}

// Executor runs a tool call and always returns a textual result.
type Executor interface {
	Execute(ctx context.Context, call *action.ToolCall) string
}

// ActivityLog records a line per step.
type ActivityLog interface {
	LogActivity(activity string) error
}

// Presenter shows the loop's progress to the user.
type Presenter interface {
	// Busy starts or relabels the progress indicator.
	Busy(label string)
	// Idle stops the progress indicator.
	Idle()
	Narrate(text string)
	ToolResult(tool, result string)
	Reply(text string)
}

// Config tunes the loop.
type Config struct {
	MaxSteps    int
	AutoApprove bool
}

// Agent drives the conversation for one session.
type Agent struct {
	session   *Session
	model     Model
	tools     Executor
	presenter Presenter
	activity  ActivityLog
	cfg       Config
}

// TurnResult summarizes one user turn.
type TurnResult struct {
	Reply          string
	Steps          int
	ToolCalls      []string
	LastToolOutput string
	// Exhausted is set when the step limit ended the turn.
	Exhausted bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithPresenter sets the UI the agent reports to.
func WithPresenter(p Presenter) Option {
	return func(a *Agent) { a.presenter = p }
}

// WithActivityLog sets where steps are recorded.
func WithActivityLog(l ActivityLog) Option {
	return func(a *Agent) { a.activity = l }
}

// WithConfig overrides the loop settings.
func WithConfig(cfg Config) Option {
	return func(a *Agent) { a.cfg = cfg }
}

// New creates an agent.
func New(session *Session, model Model, executor Executor, opts ...Option) *Agent {
	a := &Agent{
		session:   session,
		model:     model,
		tools:     executor,
		presenter: nopPresenter{},
		cfg:       Config{MaxSteps: DefaultMaxSteps},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg.MaxSteps <= 0 {
		a.cfg.MaxSteps = DefaultMaxSteps
	}
	return a
}

// Session returns the session the agent works on.
func (a *Agent) Session() *Session {
	return a.session
}

// SetModel switches the model for this session.
func (a *Agent) SetModel(model string) {
	a.session.Model = model
	if m, ok := a.model.(interface{ SetModel(string) }); ok {
		m.SetModel(model)
	}
}

// Reset clears the conversation history.
func (a *Agent) Reset() {
	a.session.Transcript.Reset()
}

// Run handles one user turn. It queries the model, executes tool calls and
// feeds their output back until the model replies or the step limit is hit.
func (a *Agent) Run(ctx context.Context, text string) TurnResult {
	text = strings.TrimSpace(text)
	transcript := a.session.Transcript
	transcript.Append(llm.RoleUser, text)
	a.record("USER: %s", text)

	approve := a.cfg.AutoApprove || IsAffirmative(text)
	ctx = tools.WithAutoApprove(ctx, approve)

	var res TurnResult
	defer a.presenter.Idle()

	for step := 1; step <= a.cfg.MaxSteps; step++ {
		res.Steps = step

		a.presenter.Busy("Thinking")
		raw := a.model.Query(ctx, transcript.Recent())
		act := action.Normalize(raw)

		if !act.IsTool() {
			a.presenter.Idle()
			res.Reply = act.Text()
			transcript.Append(llm.RoleAssistant, raw)
			a.presenter.Reply(res.Reply)
			a.record("AI: %s", res.Reply)
			return res
		}

		call := act.Tool
		logger.Debug("tool call", "step", step, "tool", call.Name)
		if narration := tools.Narration(call); narration != "" {
			a.presenter.Idle()
			a.presenter.Narrate(narration)
		}

		a.presenter.Busy("Running " + call.Name)
		result := a.tools.Execute(ctx, call)
		a.presenter.Idle()
		a.presenter.ToolResult(call.Name, result)

		transcript.Append(llm.RoleAssistant, call.Encode())
		transcript.Append(llm.RoleUser, fmt.Sprintf("Tool output (%s):\n%s", call.Name, result))
		a.record("TOOL %s [step %d]: %s", call.Name, step, firstLine(result))

		res.ToolCalls = append(res.ToolCalls, call.Name)
		res.LastToolOutput = result
	}

	res.Exhausted = true
	res.Reply = closingReply(a.cfg.MaxSteps, res.LastToolOutput)
	transcript.Append(llm.RoleAssistant, (&action.Reply{Content: res.Reply}).Encode())
	a.presenter.Reply(res.Reply)
	a.record("STEP LIMIT: %d", a.cfg.MaxSteps)
	logger.Warn("step limit reached", "steps", a.cfg.MaxSteps, "session", a.session.ShortID())
	return res
}

func closingReply(limit int, lastOutput string) string {
	if strings.TrimSpace(lastOutput) == "" {
		return fmt.Sprintf("Step limit (%d) reached before a final answer.", limit)
	}
	return fmt.Sprintf("Step limit (%d) reached before a final answer. Last tool output:\n\n```\n%s\n```", limit, strings.TrimRight(lastOutput, "\n"))
}

func (a *Agent) record(format string, args ...interface{}) {
	if a.activity == nil {
		return
	}
	if err := a.activity.LogActivity(fmt.Sprintf(format, args...)); err != nil {
		logger.Warn("activity log failed", "error", err)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

var affirmatives = map[string]bool{
	"y": true, "yes": true, "ya": true, "iya": true, "ok": true, "oke": true,
	"gas": true, "lanjut": true, "boleh": true, "sure": true,
}

// IsAffirmative reports whether text is a bare approval word, which
// pre-approves commands for the turn it starts.
func IsAffirmative(text string) bool {
	word := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!, "))
	return affirmatives[word]
}

type nopPresenter struct{}

func (nopPresenter) Busy(string) {}
func (nopPresenter) Idle() {}
func (nopPresenter) Narrate(string) {}
func (nopPresenter) ToolResult(string, string) {}
func (nopPresenter) Reply(string) {}
