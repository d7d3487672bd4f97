package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// DefaultBuiltinPlan is used when no plan file or name is given
const DefaultBuiltinPlan = "base-learn"

// PlanBatchParams selects a plan: a YAML file, or a built-in plan by name
type PlanBatchParams struct {
	Path    string
	Builtin string
}

// PlanBatchResult contains a validated, ordered plan
type PlanBatchResult struct {
	Source string
	Plan   *ExecutionPlan
	Raw    *models.DeploymentPlan
}

// PlanBatch loads and validates a deployment plan without touching the network
type PlanBatch struct {
	cfg      *config.RuntimeConfig
	loader   PlanLoader
	registry ContractRegistry
}

// NewPlanBatch creates a new PlanBatch use case
func NewPlanBatch(cfg *config.RuntimeConfig, loader PlanLoader, registry ContractRegistry) *PlanBatch {
	return &PlanBatch{
		cfg:      cfg,
		loader:   loader,
		registry: registry,
	}
}

// Load reads the selected plan. A plan without chain_id targets the configured network.
func (uc *PlanBatch) Load(ctx context.Context, params PlanBatchParams) (*models.DeploymentPlan, string, error) {
	var (
		plan   *models.DeploymentPlan
		source string
		err    error
	)

	switch {
	case params.Path != "":
		plan, err = uc.loader.LoadPlan(ctx, params.Path)
		source = params.Path
	default:
		name := params.Builtin
		if name == "" {
			name = DefaultBuiltinPlan
		}
		plan, err = uc.loader.BuiltinPlan(name)
		source = "builtin:" + name
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load plan: %w", err)
	}

	if plan.ChainID == 0 && uc.cfg.Network != nil {
		plan.ChainID = uc.cfg.Network.ChainID
	}
	return plan, source, nil
}

// Run loads, validates and orders the selected plan
func (uc *PlanBatch) Run(ctx context.Context, params PlanBatchParams) (*PlanBatchResult, error) {
	plan, source, err := uc.Load(ctx, params)
	if err != nil {
		return nil, err
	}

	ordered, err := BuildExecutionPlan(ctx, uc.registry, plan)
	if err != nil {
		return nil, err
	}

	return &PlanBatchResult{
		Source: source,
		Plan:   ordered,
		Raw:    plan,
	}, nil
}
