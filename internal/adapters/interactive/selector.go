package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// Prompter handles terminal prompts: contract selection, argument entry
// and yes/no confirmation
type Prompter struct {
	config   *config.RuntimeConfig
	validate func(input models.ConstructorInput, value string) error
}

// NewPrompter creates a prompter. builder is used to validate argument
// values as they are typed.
func NewPrompter(cfg *config.RuntimeConfig, builder usecase.ArgumentBuilder) *Prompter {
	return &Prompter{
		config: cfg,
		validate: func(input models.ConstructorInput, value string) error {
			_, err := builder.Build([]models.ConstructorInput{input}, map[string]string{input.Name: value})
			return err
		},
	}
}

// SelectContract selects a contract from a list
func (p *Prompter) SelectContract(ctx context.Context, contracts []*models.ContractDescriptor, prompt string) (*models.ContractDescriptor, error) {
	if p.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(contracts) == 0 {
		return nil, fmt.Errorf("no contracts provided for selection")
	}

	if len(contracts) == 1 {
		return contracts[0], nil
	}

	options := formatContractOptions(contracts)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Type to search, arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return contracts[index], nil
}

// PromptArgument asks for one constructor argument, re-prompting until the
// value parses for its solidity type
func (p *Prompter) PromptArgument(ctx context.Context, contract string, input models.ConstructorInput) (string, error) {
	if p.config.NonInteractive {
		return "", fmt.Errorf("%w: %s (%s)", domain.ErrMissingArgument, input.Name, input.SolidityType)
	}

	label := fmt.Sprintf("%s %s %s",
		color.New(color.FgWhite, color.Bold).Sprint(contract),
		input.Name,
		color.New(color.FgBlue).Sprintf("(%s)", input.SolidityType))
	if strings.HasSuffix(input.SolidityType, "[]") {
		label += color.New(color.Faint).Sprint(" comma-separated")
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(value string) error {
			return p.validate(input, value)
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return value, nil
}

// Confirm asks a yes/no question. Ctrl-C and "n" both count as no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.config.NonInteractive {
		return false, nil
	}

	prompt := promptui.Prompt{
		Label:     question,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// formatContractOptions creates display strings for contract selection
func formatContractOptions(contracts []*models.ContractDescriptor) []string {
	options := make([]string, len(contracts))
	for i, contract := range contracts {
		contractName := color.New(color.FgWhite, color.Bold).Sprint(contract.Name)
		id := color.New(color.FgBlue).Sprintf("#%d", contract.ID)

		inputs := contract.ConstructorInputs()
		if len(inputs) == 0 {
			options[i] = fmt.Sprintf("%s %s", id, contractName)
			continue
		}
		types := make([]string, len(inputs))
		for j, in := range inputs {
			types[j] = in.SolidityType
		}
		argStr := color.New(color.FgYellow).Sprintf("(%s)", strings.Join(types, ", "))
		options[i] = fmt.Sprintf("%s %s %s", id, contractName, argStr)
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interfaces
var _ usecase.ArgumentPrompter = (*Prompter)(nil)
var _ usecase.ContractSelector = (*Prompter)(nil)
