package safety

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShell struct {
	calls  []string
	output string
	code   int
	err    error
}

func (f *fakeShell) Run(_ context.Context, command string) (string, int, error) {
	f.calls = append(f.calls, command)
	return f.output, f.code, f.err
}

type fakePrompter struct {
	answer    bool
	questions []string
}

func (f *fakePrompter) Confirm(q string) (bool, error) {
	f.questions = append(f.questions, q)
	return f.answer, nil
}

type fakeIndicator struct {
	paused, resumed int
}

func (f *fakeIndicator) Pause()  { f.paused++ }
func (f *fakeIndicator) Resume() { f.resumed++ }

type fakeConsole struct {
	notices []string
	manual  []string
	cleared int
}

func (f *fakeConsole) Notice(msg string)     { f.notices = append(f.notices, msg) }
func (f *fakeConsole) ManualCopy(cmd string) { f.manual = append(f.manual, cmd) }
func (f *fakeConsole) Clear()                { f.cleared++ }

func newTestGate(shell *fakeShell, answer bool) (*Gate, *fakePrompter, *fakeIndicator, *fakeConsole) {
	p := &fakePrompter{answer: answer}
	ind := &fakeIndicator{}
	con := &fakeConsole{}
	return &Gate{
		Rewriter:  Rewriter{PackageManager: "pkg"},
		Shell:     shell,
		Prompter:  p,
		Indicator: ind,
		Console:   con,
	}, p, ind, con
}

func TestRewrite(t *testing.T) {
	r := Rewriter{PackageManager: "pkg"}
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{in: "pkg install wget", want: "pkg install -y wget", changed: true},
		{in: "apt install wget", want: "pkg install -y wget", changed: true},
		{in: "apt-get install curl", want: "pkg install -y curl", changed: true},
		{in: "apt-get install -y curl", want: "pkg install -y curl", changed: true},
		{in: "sudo rm -rf /data", want: "rm -rf /data", changed: true},
		{in: "ls && sudo pkg install git", want: "ls && pkg install -y git", changed: true},
		{in: "pkg install -y wget", want: "pkg install -y wget", changed: false},
		{in: "git --version", want: "git --version", changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, changed := r.Rewrite(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)

			again, changedAgain := r.Rewrite(got)
			assert.Equal(t, got, again, "rewrite must be idempotent")
			assert.False(t, changedAgain)
		})
	}
}

func TestRewrite_NoCanonicalManager(t *testing.T) {
	got, _ := Rewriter{}.Rewrite("apt install wget")
	assert.Equal(t, "apt install -y wget", got)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		cmd  string
		want Verdict
	}{
		{"ls -la", VerdictSafe},
		{"git --version", VerdictSafe},
		{"node -v", VerdictSafe},
		{"go version", VerdictSafe},
		{"pkg search nmap", VerdictSafe},
		{"which python", VerdictSafe},
		{"cd /sdcard", VerdictManual},
		{"source ~/.bashrc", VerdictManual},
		{". ./env.sh", VerdictManual},
		{"read -p 'name' x", VerdictInteractive},
		{"python -c 'input()'", VerdictInteractive},
		{"clear", VerdictClear},
		{"rm -rf /data", VerdictConfirm},
		{"pkg install -y wget", VerdictConfirm},
		{"ls; rm -rf /", VerdictConfirm},
		{"echo hi > out.txt", VerdictConfirm},
		{"cat $(which sh)", VerdictConfirm},
		{"rm -v file", VerdictConfirm},
		{"lsblk", VerdictConfirm},
		{"", VerdictConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.cmd))
		})
	}
}

func TestGate_SafeCommandRunsWithoutPrompt(t *testing.T) {
	shell := &fakeShell{output: "git version 2.44.0\n"}
	g, p, _, _ := newTestGate(shell, false)

	out := g.Execute(context.Background(), "git --version", false)

	assert.Equal(t, VerdictSafe, out.Verdict)
	assert.True(t, out.Executed)
	assert.Equal(t, "git version 2.44.0\n", out.Output)
	assert.Empty(t, p.questions)
	assert.Equal(t, []string{"git --version"}, shell.calls)
}

func TestGate_SudoRemoveDenied(t *testing.T) {
	shell := &fakeShell{}
	g, p, ind, _ := newTestGate(shell, false)

	out := g.Execute(context.Background(), "sudo rm -rf /data", false)

	assert.Equal(t, "rm -rf /data", out.Command)
	assert.True(t, out.Rewritten)
	assert.Equal(t, VerdictConfirm, out.Verdict)
	assert.Equal(t, Denied, out.Output)
	assert.False(t, out.Executed)
	assert.Empty(t, shell.calls)
	require.Len(t, p.questions, 1)
	assert.Contains(t, p.questions[0], "rm -rf /data")
	assert.Equal(t, ind.paused, ind.resumed)
	assert.NotZero(t, ind.paused)
}

func TestGate_DeniedDoesNotTouchFilesystem(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	g, _, _, _ := newTestGate(nil, false)
	g.Shell = NewShellRunner(0)

	out := g.Execute(context.Background(), "sudo rm -f "+target, false)
	assert.Equal(t, Denied, out.Output)
	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestGate_ConfirmedRuns(t *testing.T) {
	shell := &fakeShell{output: ""}
	g, _, _, _ := newTestGate(shell, true)

	out := g.Execute(context.Background(), "touch x", false)
	assert.True(t, out.Approved)
	assert.Equal(t, SuccessNoOutput, out.Output)
	assert.Equal(t, []string{"touch x"}, shell.calls)
}

func TestGate_AutoApproveSkipsPrompt(t *testing.T) {
	shell := &fakeShell{output: "done"}
	g, p, _, con := newTestGate(shell, false)

	out := g.Execute(context.Background(), "pkg install wget", true)

	assert.Equal(t, "pkg install -y wget", out.Command)
	assert.Equal(t, "done", out.Output)
	assert.Empty(t, p.questions)
	assert.Contains(t, con.notices, "Auto-Execute: pkg install -y wget")
	assert.Equal(t, []string{"pkg install -y wget"}, shell.calls)
}

func TestGate_ChangeDirectoryNeverRuns(t *testing.T) {
	shell := &fakeShell{}
	g, p, _, con := newTestGate(shell, true)

	out := g.Execute(context.Background(), "cd /sdcard", true)

	assert.Equal(t, VerdictManual, out.Verdict)
	assert.Equal(t, "[SYSTEM]: Run 'cd /sdcard' manually in your own shell.", out.Output)
	assert.Empty(t, shell.calls)
	assert.Empty(t, p.questions)
	assert.Equal(t, []string{"cd /sdcard"}, con.manual)
}

func TestGate_InteractiveCommandNeverRuns(t *testing.T) {
	shell := &fakeShell{}
	g, _, _, _ := newTestGate(shell, true)

	out := g.Execute(context.Background(), "read name", true)
	assert.Equal(t, InteractiveStop, out.Output)
	assert.Empty(t, shell.calls)
}

func TestGate_ClearScreen(t *testing.T) {
	shell := &fakeShell{}
	g, _, _, con := newTestGate(shell, false)

	out := g.Execute(context.Background(), "clear", false)
	assert.Equal(t, ScreenCleared, out.Output)
	assert.Equal(t, 1, con.cleared)
	assert.Empty(t, shell.calls)
}

func TestGate_LaunchFailure(t *testing.T) {
	shell := &fakeShell{err: errors.New("fork/exec: no such process"), code: -1}
	g, _, _, _ := newTestGate(shell, true)

	out := g.Execute(context.Background(), "ls", false)
	assert.Equal(t, "Error: fork/exec: no such process", out.Output)
}

func TestShapeOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		code   int
		want   string
	}{
		{name: "empty success", output: "", code: 0, want: SuccessNoOutput},
		{name: "whitespace success", output: "  \n", code: 0, want: SuccessNoOutput},
		{name: "silent failure", output: "", code: 2, want: "Error: Command exited with code 2"},
		{name: "plain output", output: "ok", code: 0, want: "ok"},
		{name: "missing binary", output: "sh: foo: command not found", code: 127, want: "sh: foo: command not found" + missingNote},
		{name: "missing file", output: "cat: x: No such file or directory", code: 1, want: "cat: x: No such file or directory" + missingNote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShapeOutput(tt.output, tt.code))
		})
	}
}

func TestShellRunner(t *testing.T) {
	runner := NewShellRunner(0)

	out, code, err := runner.Run(context.Background(), "echo hello; echo oops 1>&2")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "oops")

	_, code, err = runner.Run(context.Background(), "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}
