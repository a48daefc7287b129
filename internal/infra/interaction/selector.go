// Where: cli/internal/infra/interaction/selector.go
// What: Prompt implementations using the huh library.
// Why: Provide keyboard-driven input, selection, and confirmation.
package interaction

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

var runInputPrompt = func(title, placeholder string, input *string) error {
	return huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(input).
		Run()
}

var runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(selected).
		Run()
}

var runConfirmPrompt = func(title string, confirmed *bool) error {
	return huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(confirmed).
		Run()
}

// HuhPrompter implements Prompter using the huh TUI library.
type HuhPrompter struct{}

// Input returns the typed value, or placeholder when left blank.
func (HuhPrompter) Input(title, placeholder string) (string, error) {
	var input string
	if err := runInputPrompt(title, placeholder, &input); err != nil {
		return "", fmt.Errorf("prompt input: %w", err)
	}
	if strings.TrimSpace(input) == "" {
		return placeholder, nil
	}
	return strings.TrimSpace(input), nil
}

func (HuhPrompter) SelectValue(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	var selected string
	if err := runSelectPrompt(title, huhOptions, &selected); err != nil {
		return "", fmt.Errorf("prompt select value: %w", err)
	}
	return selected, nil
}

func (HuhPrompter) Confirm(title string) (bool, error) {
	var confirmed bool
	if err := runConfirmPrompt(title, &confirmed); err != nil {
		return false, fmt.Errorf("prompt confirm: %w", err)
	}
	return confirmed, nil
}
