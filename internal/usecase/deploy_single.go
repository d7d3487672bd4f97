package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// DeploySingle deploys one contract with manually supplied constructor arguments
type DeploySingle struct {
	cfg      *config.RuntimeConfig
	registry ContractRegistry
	builder  ArgumentBuilder
	prompter ArgumentPrompter
	batch    *DeployBatch
}

// NewDeploySingle creates a new manual deploy use case
func NewDeploySingle(
	cfg *config.RuntimeConfig,
	registry ContractRegistry,
	builder ArgumentBuilder,
	prompter ArgumentPrompter,
	batch *DeployBatch,
) *DeploySingle {
	return &DeploySingle{
		cfg:      cfg,
		registry: registry,
		builder:  builder,
		prompter: prompter,
		batch:    batch,
	}
}

// DeploySingleParams contains parameters for a manual deploy
type DeploySingleParams struct {
	Contract models.ContractRef
	Label    string
	Args     map[string]string
}

// Execute validates the arguments, then runs a one-step batch so the network
// guard and the log format match batch runs
func (uc *DeploySingle) Execute(ctx context.Context, params DeploySingleParams) (*BatchResult, error) {
	descriptor, err := uc.registry.GetContract(ctx, params.Contract)
	if err != nil {
		return nil, err
	}

	inputs := descriptor.ConstructorInputs()
	raw := lo.Assign(params.Args)

	known := lo.SliceToMap(inputs, func(in models.ConstructorInput) (string, bool) { return in.Name, true })
	unknown := lo.Filter(lo.Keys(raw), func(name string, _ int) bool { return !known[name] })
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown argument %s for %s", domain.ErrInvalidArgument,
			strings.Join(unknown, ", "), descriptor.ConstructorSignature())
	}

	if !uc.cfg.NonInteractive && uc.prompter != nil {
		for _, input := range inputs {
			if strings.TrimSpace(raw[input.Name]) != "" {
				continue
			}
			value, err := uc.prompter.PromptArgument(ctx, descriptor.Name, input)
			if err != nil {
				return nil, err
			}
			raw[input.Name] = value
		}
	}

	if _, err := uc.builder.Build(inputs, raw); err != nil {
		return nil, err
	}

	label := params.Label
	if label == "" {
		label = DefaultLabel(descriptor.Name)
	}

	step := models.PlanStep{
		Label:    label,
		Contract: models.ContractRefByID(descriptor.ID),
		Args: lo.Map(inputs, func(in models.ConstructorInput, _ int) models.ArgRule {
			return models.LiteralArg(strings.TrimSpace(raw[in.Name]))
		}),
	}

	var chainID uint64
	if uc.cfg.Network != nil {
		chainID = uc.cfg.Network.ChainID
	}

	return uc.batch.Execute(ctx, DeployBatchParams{
		Plan: &models.DeploymentPlan{
			Name:    label,
			ChainID: chainID,
			Steps:   []models.PlanStep{step},
		},
	})
}

// DefaultLabel derives a step label from a contract name: "BasicMath" -> "basicMath"
func DefaultLabel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	i := 0
	for i < len(runes) && runes[i] >= 'A' && runes[i] <= 'Z' {
		i++
	}
	// keep the last capital of an acronym followed by a word: "NFTVault" -> "nftVault"
	if i > 1 && i < len(runes) && runes[i] >= 'a' && runes[i] <= 'z' {
		i--
	}
	return strings.ToLower(string(runes[:i])) + string(runes[i:])
}
