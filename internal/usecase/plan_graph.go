package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// ExecutionPlan is a validated deployment plan in execution order
type ExecutionPlan struct {
	Name    string
	ChainID uint64
	Steps   []*PlannedStep
}

// PlannedStep is one plan step bound to its registry entry
type PlannedStep struct {
	Index        int // 1-based execution position
	Step         models.PlanStep
	Descriptor   *models.ContractDescriptor
	Inputs       []models.ConstructorInput
	Dependencies []string
}

// Labels returns the step labels in execution order
func (p *ExecutionPlan) Labels() []string {
	labels := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		labels[i] = s.Step.Label
	}
	return labels
}

// BuildExecutionPlan validates a plan against the registry and orders it so
// that every step runs after the steps it consumes
func BuildExecutionPlan(ctx context.Context, registry ContractRegistry, plan *models.DeploymentPlan) (*ExecutionPlan, error) {
	if plan == nil || len(plan.Steps) == 0 {
		return nil, fmt.Errorf("%w: plan has no steps", domain.ErrInvalidPlan)
	}

	if err := validatePlanShape(plan); err != nil {
		return nil, err
	}

	bound := make([]*PlannedStep, len(plan.Steps))
	for i, step := range plan.Steps {
		descriptor, err := registry.GetContract(ctx, step.Contract)
		if err != nil {
			return nil, fmt.Errorf("step '%s': %w", step.Label, err)
		}

		inputs := descriptor.ConstructorInputs()
		if len(step.Args) != len(inputs) {
			return nil, fmt.Errorf("%w: step '%s' gives %d arguments but %s expects %d (%s)",
				domain.ErrInvalidPlan, step.Label, len(step.Args), descriptor.Name, len(inputs), descriptor.ConstructorSignature())
		}

		for j, rule := range step.Args {
			if !rule.IsRef() {
				continue
			}
			typ := inputs[j].SolidityType
			if typ != "address" && typ != "address[]" {
				return nil, fmt.Errorf("%w: step '%s' argument %s is %s and cannot take a deployed address",
					domain.ErrInvalidPlan, step.Label, inputs[j].Name, typ)
			}
			if typ == "address" && len(rule.Refs) != 1 {
				return nil, fmt.Errorf("%w: step '%s' argument %s takes exactly one address",
					domain.ErrInvalidPlan, step.Label, inputs[j].Name)
			}
		}

		bound[i] = &PlannedStep{
			Step:         step,
			Descriptor:   descriptor,
			Inputs:       inputs,
			Dependencies: step.Dependencies(),
		}
	}

	order, err := newDependencyGraph(plan.Steps).TopologicalSort()
	if err != nil {
		return nil, err
	}

	result := &ExecutionPlan{
		Name:    plan.Name,
		ChainID: plan.ChainID,
		Steps:   make([]*PlannedStep, 0, len(order)),
	}
	for i, idx := range order {
		step := bound[idx]
		step.Index = i + 1
		result.Steps = append(result.Steps, step)
	}
	return result, nil
}

// validatePlanShape checks labels and references without touching the registry
func validatePlanShape(plan *models.DeploymentPlan) error {
	labels := make(map[string]bool, len(plan.Steps))
	for _, step := range plan.Steps {
		if strings.TrimSpace(step.Label) == "" {
			return fmt.Errorf("%w: step for contract %s has no label", domain.ErrInvalidPlan, step.Contract)
		}
		if labels[step.Label] {
			return fmt.Errorf("%w: duplicate step label '%s'", domain.ErrInvalidPlan, step.Label)
		}
		labels[step.Label] = true
	}

	for _, step := range plan.Steps {
		for _, dep := range step.Dependencies() {
			if dep == step.Label {
				return fmt.Errorf("%w: step '%s' cannot depend on itself", domain.ErrInvalidPlan, step.Label)
			}
			if !labels[dep] {
				return fmt.Errorf("%w: step '%s' depends on non-existent step '%s'", domain.ErrInvalidPlan, step.Label, dep)
			}
		}
	}
	return nil
}

// dependencyGraph is a directed acyclic graph over plan steps, keyed by
// declaration index
type dependencyGraph struct {
	steps []models.PlanStep
	index map[string]int
	edges map[int][]int // dependency -> dependents
}

func newDependencyGraph(steps []models.PlanStep) *dependencyGraph {
	g := &dependencyGraph{
		steps: steps,
		index: make(map[string]int, len(steps)),
		edges: make(map[int][]int),
	}
	for i, step := range steps {
		g.index[step.Label] = i
	}
	for i, step := range steps {
		for _, dep := range step.Dependencies() {
			if d, ok := g.index[dep]; ok {
				g.edges[d] = append(g.edges[d], i)
			}
		}
	}
	return g
}

// TopologicalSort returns declaration indexes in execution order. Among the
// steps that are ready, the earliest declared always runs first, so a plan
// that is already ordered keeps its order.
func (g *dependencyGraph) TopologicalSort() ([]int, error) {
	inDegree := make([]int, len(g.steps))
	for _, dependents := range g.edges {
		for _, d := range dependents {
			inDegree[d]++
		}
	}

	done := make([]bool, len(g.steps))
	order := make([]int, 0, len(g.steps))
	for len(order) < len(g.steps) {
		next := -1
		for i := range g.steps {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			break
		}

		done[next] = true
		order = append(order, next)
		for _, dependent := range g.edges[next] {
			inDegree[dependent]--
		}
	}

	if len(order) != len(g.steps) {
		var cycle []string
		for i, step := range g.steps {
			if !done[i] {
				cycle = append(cycle, step.Label)
			}
		}
		return nil, domain.PlanCycleErr{Labels: cycle}
	}
	return order, nil
}
