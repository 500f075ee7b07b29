package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompts asks the user questions on the terminal. It implements
// safety.Prompter and tools.Asker.
type Prompts struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

// NewPrompts creates prompts on stdin/stdout.
func NewPrompts() *Prompts {
	return &Prompts{}
}

func (p *Prompts) writer() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

// Confirm asks a yes/no question. Anything but yes counts as no; only
// terminal failures are returned as errors.
func (p *Prompts) Confirm(question string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
		Stdin:     p.In,
		Stdout:    p.Out,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}

// Present prints a question and its numbered options.
func (p *Prompts) Present(question string, choices []string) {
	w := p.writer()
	fmt.Fprintln(w)
	fmt.Fprintln(w, ToolInfo.Render(IconQuestion+" "+question))
	for i, c := range choices {
		fmt.Fprintf(w, "  %s %s\n", PromptStyle.Render(fmt.Sprintf("%d.", i+1)), c)
	}
}

// Ask reads one answer, offering defaultValue.
func (p *Prompts) Ask(label, defaultValue string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
		Stdin:   p.In,
		Stdout:  p.Out,
	}
	return prompt.Run()
}

// Secret reads a masked value such as an API key.
func (p *Prompts) Secret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: notBlank,
		Stdin:    p.In,
		Stdout:   p.Out,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Select lets the user pick one of items, with type-to-filter search.
func (p *Prompts) Select(label string, items []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("nothing to select")
	}
	searcher := func(input string, index int) bool {
		return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
	}
	prompt := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         10,
		Searcher:     searcher,
		HideSelected: true,
		Stdin:        p.In,
		Stdout:       p.Out,
	}
	_, result, err := prompt.Run()
	return result, err
}

func notBlank(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value cannot be empty")
	}
	return nil
}
