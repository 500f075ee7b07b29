package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tara-vision/nexus/internal/action"
)

// CreateFile writes content to a file, replacing any existing file.
func (tb *Toolbox) CreateFile(_ context.Context, call *action.ToolCall) (string, error) {
	filePath, content := fileArgs(call)
	if filePath == "" {
		return "", fmt.Errorf("filename parameter is required")
	}

	// Resolve path relative to working directory
	if !filepath.IsAbs(filePath) && tb.WorkingDir != "" {
		filePath = filepath.Join(tb.WorkingDir, filePath)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	previous, readErr := os.ReadFile(absPath)
	existed := readErr == nil

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if existed {
		added, removed := lineChanges(string(previous), content)
		tb.notice(fmt.Sprintf("Overwrote %s (+%d -%d lines)", filepath.Base(absPath), added, removed))
	} else {
		tb.notice("File created: " + filepath.Base(absPath))
	}

	return fmt.Sprintf("File created at %s", absPath), nil
}

// fileArgs pulls the filename and content from wherever the model put them:
// top-level fields, an args object, or a bare string args holding the content.
func fileArgs(call *action.ToolCall) (string, string) {
	filename := call.Filename
	content := call.Content

	if m := call.ArgsMap(); m != nil {
		for _, key := range []string{"filename", "file_path", "path"} {
			if v, ok := m[key].(string); ok && v != "" && filename == "" {
				filename = v
			}
		}
		if v, ok := m["content"].(string); ok {
			content = v
		}
	} else if s, ok := call.ArgsString(); ok {
		content = s
	}

	return strings.TrimSpace(filename), content
}

// lineChanges counts added and removed lines between two texts.
func lineChanges(before, after string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			n++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}
