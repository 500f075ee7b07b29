// Package tools maps the tool names the model may call to their
// implementations.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/tara-vision/nexus/internal/action"
	"github.com/tara-vision/nexus/internal/logger"
)

// Tool names understood by the agent.
const (
	RunTerminal = "run_terminal"
	RunRemote   = "run_remote"
	CreateFile  = "create_file"
	AskChoice   = "ask_choice"
	Search      = "search"
	GetTimeInfo = "get_time_info"
)

// Handler executes one tool call. A returned error is reported to the model
// as an "Error: ..." result.
type Handler func(ctx context.Context, call *action.ToolCall) (string, error)

type Registry struct {
	tools map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Handler),
	}
}

func (r *Registry) RegisterTool(name string, handler Handler) {
	r.tools[name] = handler
}

// Has reports whether a tool is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a tool call and always returns a result. Unknown tools yield
// an empty result so the loop can carry on.
func (r *Registry) Execute(ctx context.Context, call *action.ToolCall) string {
	if call == nil {
		return ""
	}
	handler, exists := r.tools[call.Name]
	if !exists {
		logger.Warn("unknown tool", "tool", call.Name)
		return ""
	}

	result, err := handler(ctx, call)
	if err != nil {
		logger.Debug("tool failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

type autoApproveKey struct{}

// WithAutoApprove marks ctx as carrying the user's approval for commands
// that would otherwise need confirmation.
func WithAutoApprove(ctx context.Context, approve bool) context.Context {
	return context.WithValue(ctx, autoApproveKey{}, approve)
}

func autoApproved(ctx context.Context) bool {
	v, _ := ctx.Value(autoApproveKey{}).(bool)
	return v
}
