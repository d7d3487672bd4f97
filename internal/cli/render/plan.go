package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

type planStepJSON struct {
	Index     int      `json:"index"`
	Label     string   `json:"label"`
	Contract  string   `json:"contract"`
	Args      []string `json:"args"`
	DependsOn []string `json:"dependsOn"`
}

type planJSON struct {
	Source  string         `json:"source"`
	Name    string         `json:"name"`
	ChainID uint64         `json:"chainId"`
	Steps   []planStepJSON `json:"steps"`
}

// PlanRenderer renders an ordered execution plan
type PlanRenderer struct {
	out  io.Writer
	json bool
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, jsonOutput bool) *PlanRenderer {
	return &PlanRenderer{out: out, json: jsonOutput}
}

// Render renders the plan in execution order
func (r *PlanRenderer) Render(result *usecase.PlanBatchResult) error {
	plan := result.Plan

	if r.json {
		return WriteJSON(r.out, planJSON{
			Source:  result.Source,
			Name:    plan.Name,
			ChainID: plan.ChainID,
			Steps: lo.Map(plan.Steps, func(s *usecase.PlannedStep, _ int) planStepJSON {
				return planStepJSON{
					Index:     s.Index,
					Label:     s.Step.Label,
					Contract:  s.Descriptor.Name,
					Args:      lo.Map(s.Step.Args, func(a models.ArgRule, _ int) string { return a.String() }),
					DependsOn: lo.Ternary(s.Dependencies == nil, []string{}, s.Dependencies),
				}
			}),
		})
	}

	fmt.Fprintf(r.out, "%s %s\n", sectionHeaderStyle.Sprint("Plan:"), HumanLabel(plan.Name))
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Source:"), result.Source)
	if plan.ChainID != 0 {
		fmt.Fprintf(r.out, "%s %d\n", labelStyle.Sprint("Chain:"), plan.ChainID)
	}
	fmt.Fprintf(r.out, "%s %d\n\n", labelStyle.Sprint("Steps:"), len(plan.Steps))

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "STEP", "CONTRACT", "ARGUMENTS"})
	for _, s := range plan.Steps {
		t.AppendRow(table.Row{
			s.Index,
			HumanLabel(s.Step.Label),
			sectionHeaderStyle.Sprint(s.Descriptor.Name),
			planArgs(s),
		})
	}
	t.Render()
	return nil
}

func planArgs(s *usecase.PlannedStep) string {
	if len(s.Step.Args) == 0 {
		return faintStyle.Sprint("-")
	}
	parts := make([]string, len(s.Step.Args))
	for i, arg := range s.Step.Args {
		name := s.Inputs[i].Name
		if arg.IsRef() {
			parts[i] = fmt.Sprintf("%s=%s", name, pendingStyle.Sprint(arg.String()))
			continue
		}
		parts[i] = fmt.Sprintf("%s=%s", name, arg.String())
	}
	return strings.Join(parts, " ")
}

var _ Renderer[*usecase.PlanBatchResult] = (*PlanRenderer)(nil)
