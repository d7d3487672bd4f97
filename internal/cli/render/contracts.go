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

type contractJSON struct {
	ID          int                       `json:"id"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Constructor []models.ConstructorInput `json:"constructor"`
}

type inspectJSON struct {
	contractJSON
	Functions     []string `json:"functions"`
	Events        []string `json:"events"`
	BytecodeBytes int      `json:"bytecodeBytes"`
}

func toContractJSON(c *models.ContractDescriptor) contractJSON {
	inputs := c.ConstructorInputs()
	if inputs == nil {
		inputs = []models.ConstructorInput{}
	}
	return contractJSON{ID: c.ID, Name: c.Name, Description: c.Description, Constructor: inputs}
}

// ContractsRenderer renders the contract registry
type ContractsRenderer struct {
	out  io.Writer
	json bool
}

// NewContractsRenderer creates a new contracts renderer
func NewContractsRenderer(out io.Writer, jsonOutput bool) *ContractsRenderer {
	return &ContractsRenderer{out: out, json: jsonOutput}
}

// Render renders the contract list
func (r *ContractsRenderer) Render(result *usecase.ListContractsResult) error {
	if r.json {
		return WriteJSON(r.out, lo.Map(result.Contracts, func(c *models.ContractDescriptor, _ int) contractJSON {
			return toContractJSON(c)
		}))
	}

	if len(result.Contracts) == 0 {
		fmt.Fprintln(r.out, "No contracts found")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"ID", "CONTRACT", "CONSTRUCTOR", "DESCRIPTION"})
	for _, c := range result.Contracts {
		t.AppendRow(table.Row{
			c.ID,
			sectionHeaderStyle.Sprint(c.Name),
			constructorSummary(c),
			faintStyle.Sprint(c.Description),
		})
	}
	t.Render()

	if len(result.Contracts) != result.Total {
		fmt.Fprintf(r.out, "\n%d of %d contracts\n", len(result.Contracts), result.Total)
	}
	return nil
}

// RenderInspect renders one contract in detail
func (r *ContractsRenderer) RenderInspect(result *usecase.InspectContractResult) error {
	if r.json {
		return WriteJSON(r.out, inspectJSON{
			contractJSON:  toContractJSON(result.Contract),
			Functions:     lo.Ternary(result.Functions == nil, []string{}, result.Functions),
			Events:        lo.Ternary(result.Events == nil, []string{}, result.Events),
			BytecodeBytes: result.BytecodeBytes,
		})
	}

	c := result.Contract
	fmt.Fprintf(r.out, "%s %s\n", sectionHeaderStyle.Sprint(c.Name), faintStyle.Sprintf("#%d", c.ID))
	if c.Description != "" {
		fmt.Fprintf(r.out, "%s\n", c.Description)
	}
	fmt.Fprintln(r.out)

	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("Constructor:"), c.ConstructorSignature())
	fmt.Fprintf(r.out, "%s %d bytes\n", labelStyle.Sprint("Bytecode:"), result.BytecodeBytes)

	if len(result.Functions) > 0 {
		fmt.Fprintf(r.out, "\n%s\n", labelStyle.Sprint("Functions:"))
		for _, fn := range result.Functions {
			fmt.Fprintf(r.out, "  %s\n", fn)
		}
	}
	if len(result.Events) > 0 {
		fmt.Fprintf(r.out, "\n%s\n", labelStyle.Sprint("Events:"))
		for _, ev := range result.Events {
			fmt.Fprintf(r.out, "  %s\n", ev)
		}
	}
	return nil
}

func constructorSummary(c *models.ContractDescriptor) string {
	inputs := c.ConstructorInputs()
	if len(inputs) == 0 {
		return faintStyle.Sprint("-")
	}
	parts := lo.Map(inputs, func(in models.ConstructorInput, _ int) string {
		return in.SolidityType + " " + in.Name
	})
	return strings.Join(parts, ", ")
}

var _ Renderer[*usecase.ListContractsResult] = (*ContractsRenderer)(nil)
