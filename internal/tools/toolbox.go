package tools

import (
	"strings"
	"time"

	"github.com/tara-vision/nexus/internal/action"
	"github.com/tara-vision/nexus/internal/remote"
	"github.com/tara-vision/nexus/internal/safety"
)

// MemoryStore is the subset of the key/value store the tools read.
type MemoryStore interface {
	Get(key string) (string, bool)
}

// Notifier shows short status lines to the user.
type Notifier interface {
	Notice(msg string)
}

// Toolbox holds the collaborators the built-in tools need.
type Toolbox struct {
	Gate             *safety.Gate
	Remote           *remote.Client
	Memory           MemoryStore
	DefaultRemoteURL string
	Asker            Asker
	Indicator        safety.Indicator
	Searcher         *Searcher
	Notifier         Notifier
	WorkingDir       string
	Now              func() time.Time
}

// Register adds every tool the toolbox can serve to r.
func (tb *Toolbox) Register(r *Registry) {
	if tb.Gate != nil {
		r.RegisterTool(RunTerminal, tb.RunTerminal)
	}
	if tb.Remote != nil {
		r.RegisterTool(RunRemote, tb.RunRemote)
	}
	r.RegisterTool(CreateFile, tb.CreateFile)
	if tb.Asker != nil {
		r.RegisterTool(AskChoice, tb.AskChoice)
	}
	if tb.Searcher != nil {
		r.RegisterTool(Search, tb.Search)
	}
	r.RegisterTool(GetTimeInfo, tb.GetTimeInfo)
}

// NewDefaultRegistry builds a registry with all tools tb supports.
func NewDefaultRegistry(tb *Toolbox) *Registry {
	r := NewRegistry()
	tb.Register(r)
	return r
}

func (tb *Toolbox) notice(msg string) {
	if tb.Notifier != nil {
		tb.Notifier.Notice(msg)
	}
}

func (tb *Toolbox) pause() func() {
	if tb.Indicator == nil {
		return func() {}
	}
	tb.Indicator.Pause()
	return tb.Indicator.Resume
}

// Narration returns the text to show the user before a tool runs. For
// create_file the content field may hold the file body, which is not shown.
func Narration(call *action.ToolCall) string {
	if call == nil {
		return ""
	}
	if call.Name == CreateFile {
		if _, body := fileArgs(call); body == call.Content {
			return ""
		}
	}
	return strings.TrimSpace(call.Content)
}
