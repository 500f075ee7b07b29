package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tara-vision/nexus/internal/action"
)

// Asker presents a question with numbered options and reads raw answers.
type Asker interface {
	Present(question string, choices []string)
	Ask(label, defaultValue string) (string, error)
}

// AskChoice shows the options and keeps asking until a valid number is
// entered. There is no timeout; only a failing prompt (EOF, interrupt)
// ends it early.
func (tb *Toolbox) AskChoice(_ context.Context, call *action.ToolCall) (string, error) {
	question := call.Question
	if question == "" {
		question = call.Arg("question")
	}
	choices := call.Choices
	if len(choices) == 0 {
		choices = call.StringList("choices", nil)
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("ask_choice needs at least one choice")
	}

	resume := tb.pause()
	defer resume()

	tb.Asker.Present(question, choices)
	label := fmt.Sprintf("Select (1-%d)", len(choices))
	for {
		answer, err := tb.Asker.Ask(label, "1")
		if err != nil {
			return "", fmt.Errorf("selection aborted: %w", err)
		}
		if idx, ok := parseChoice(answer, len(choices)); ok {
			return fmt.Sprintf("User selected: '%s'.", choices[idx]), nil
		}
	}
}

// parseChoice converts a 1-based answer into a 0-based index.
func parseChoice(answer string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}
