package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tara-vision/nexus/internal/safety"
	"github.com/tara-vision/nexus/internal/storage"
	"github.com/tara-vision/nexus/internal/tools"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	assert.Equal(t, []string{"light", "matrix", "nexus", "plain", "violet"}, names)

	nexus, ok := LookupTheme(" Nexus ")
	require.True(t, ok)
	assert.Equal(t, "#06B6D4", nexus.Colors.Primary)
	assert.Equal(t, "dark", nexus.Markdown)

	plain, ok := LookupTheme("plain")
	require.True(t, ok)
	assert.Equal(t, Palette{}, plain.Colors)
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { ApplyTheme(DefaultTheme) })

	require.NoError(t, ApplyTheme("matrix"))
	assert.Equal(t, "matrix", CurrentTheme())

	err := ApplyTheme("neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: light, matrix, nexus, plain, violet")
	assert.Equal(t, "matrix", CurrentTheme())
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme([]byte("name: Custom\ncolors:\n  primary: \"#fff\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "custom", theme.Name)
	assert.Equal(t, "auto", theme.Markdown)
	assert.Equal(t, "#fff", theme.Colors.Primary)

	_, err = ParseTheme([]byte("colors: {}"))
	assert.Error(t, err)

	_, err = ParseTheme([]byte("name: [unclosed"))
	assert.Error(t, err)
}

func TestSpinner_PauseResume(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinnerTo(out, SpinnerFrames.Line)

	s.Pause()
	s.Resume()
	assert.False(t, s.IsRunning(), "resume without a pause does not start")

	s.Start("Thinking")
	assert.True(t, s.IsRunning())

	s.Pause()
	assert.False(t, s.IsRunning())
	s.Resume()
	assert.True(t, s.IsRunning())

	s.Start("Running run_terminal")
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())
	s.Resume()
	assert.False(t, s.IsRunning(), "stop clears a pending resume")

	assert.Contains(t, out.String(), "Thinking...")
	assert.Contains(t, out.String(), "Running run_terminal...")
}

func TestSpinner_Disabled(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinnerTo(out, nil)
	s.Disable()
	s.Start("x")
	assert.False(t, s.IsRunning())
	assert.Empty(t, out.String())
}

func TestRenderer_ConsoleAndPresenter(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out, nil)
	r.now = func() time.Time { return time.Date(2026, 1, 2, 9, 5, 0, 0, time.UTC) }

	r.Notice("Auto-Fix: 'apt install git' -> 'pkg install -y git'")
	r.Notice("Auto-Execute: touch a")
	r.Notice("File created: a.txt")
	r.ManualCopy("cd /sdcard")
	r.ManualCopy("   ")
	r.Narrate("Checking git")
	r.Clear()

	text := out.String()
	assert.Contains(t, text, "Auto-Fix: 'apt install git' -> 'pkg install -y git'")
	assert.Contains(t, text, "Auto-Execute: touch a")
	assert.Contains(t, text, "File created: a.txt")
	assert.Contains(t, text, "RUN MANUALLY")
	assert.Contains(t, text, "cd /sdcard")
	assert.Contains(t, text, "Checking git")
	assert.Contains(t, text, "NEXUS AGENT")
	assert.Contains(t, text, "09.05")
}

func TestRenderer_FormatToolStatus(t *testing.T) {
	r := NewRenderer(&syncBuffer{}, nil)

	tests := []struct {
		tool, result, want string
	}{
		{tools.RunTerminal, safety.Denied, "run_terminal: denied"},
		{tools.RunRemote, "Error: connecting to remote server: refused", "run_remote failed: Error: connecting to remote server: refused"},
		{tools.RunTerminal, "git version 2.43.0", "git version 2.43.0"},
		{tools.RunTerminal, "[SYSTEM]: Run 'cd x' manually in your own shell.", "[SYSTEM]: Run 'cd x'"},
		{tools.RunRemote, "Linux", "Executed remotely"},
		{tools.CreateFile, "File created at /tmp/a", "File created at /tmp/a"},
		{tools.Search, "SEARCH RESULTS:\n\nTITLE: a\n\nTITLE: b", "(2 results)"},
		{tools.Search, "No results.", "(no results)"},
		{tools.AskChoice, "User selected: 'vim'.", "User selected: 'vim'."},
		{tools.GetTimeInfo, "System time: Monday", "System time: Monday"},
		{"teleport", "", "teleport: no result"},
	}
	for _, tt := range tests {
		got := r.FormatToolStatus(tt.tool, tt.result)
		assert.Contains(t, got, tt.want, tt.tool)
	}

	long := strings.Repeat("line\n", 40)
	got := r.FormatToolStatus(tools.RunTerminal, long)
	assert.Contains(t, got, "(25 more lines)")
}

func TestRenderer_FormatUsageAndHelp(t *testing.T) {
	r := NewRenderer(&syncBuffer{}, nil)
	assert.Contains(t, r.FormatUsage(nil), "No token usage")
	assert.Contains(t, r.FormatUsage(&storage.TokenUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}), "Total tokens:      7")

	help := r.HelpText()
	for _, cmd := range []string{"set model", "set theme", "set remote", "reset", "usage", "exit, quit"} {
		assert.Contains(t, help, cmd)
	}
}

func TestPrompts_Present(t *testing.T) {
	out := &nopWriteCloser{}
	p := &Prompts{Out: out}
	p.Present("Which editor?", []string{"nano", "vim"})

	text := out.String()
	assert.Contains(t, text, "Which editor?")
	assert.Contains(t, text, "1.")
	assert.Contains(t, text, "vim")
}

func TestNotBlank(t *testing.T) {
	assert.Error(t, notBlank("  "))
	assert.NoError(t, notBlank("sk-123"))
}

type nopWriteCloser struct{ bytes.Buffer }

func (*nopWriteCloser) Close() error { return nil }
