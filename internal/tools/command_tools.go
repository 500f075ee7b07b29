package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tara-vision/nexus/internal/action"
	"github.com/tara-vision/nexus/internal/remote"
	"github.com/tara-vision/nexus/internal/storage"
)

// RunTerminal runs a local shell command through the safety gate.
func (tb *Toolbox) RunTerminal(ctx context.Context, call *action.ToolCall) (string, error) {
	command := strings.TrimSpace(call.Arg("command"))
	if command == "" {
		return "", fmt.Errorf("command argument is required")
	}
	outcome := tb.Gate.Execute(ctx, command, autoApproved(ctx))
	return outcome.Output, nil
}

// RunRemote forwards a command to the configured remote peer.
func (tb *Toolbox) RunRemote(ctx context.Context, call *action.ToolCall) (string, error) {
	command := strings.TrimSpace(call.Arg("command"))
	if command == "" {
		return "", fmt.Errorf("command argument is required")
	}
	return tb.Remote.Run(ctx, tb.remoteURL(), command), nil
}

func (tb *Toolbox) remoteURL() string {
	if tb.Memory != nil {
		if url, ok := tb.Memory.Get(storage.KeyRemoteURL); ok && strings.TrimSpace(url) != "" {
			return url
		}
	}
	if tb.DefaultRemoteURL != "" {
		return tb.DefaultRemoteURL
	}
	return remote.DefaultURL
}
