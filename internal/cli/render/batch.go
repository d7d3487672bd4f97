package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

type batchStepJSON struct {
	Index       int      `json:"index"`
	Label       string   `json:"label"`
	Contract    string   `json:"contract"`
	Status      string   `json:"status"`
	Args        []string `json:"args,omitempty"`
	Address     string   `json:"address,omitempty"`
	TxHash      string   `json:"transactionHash,omitempty"`
	BlockNumber uint64   `json:"blockNumber,omitempty"`
	GasUsed     uint64   `json:"gasUsed,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type batchJSON struct {
	RunID     string            `json:"runId"`
	Plan      string            `json:"plan,omitempty"`
	ChainID   uint64            `json:"chainId,omitempty"`
	Status    string            `json:"status"`
	Steps     []batchStepJSON   `json:"steps"`
	Addresses map[string]string `json:"addresses"`
	Logs      []models.LogEntry `json:"logs"`
	Error     string            `json:"error,omitempty"`
}

const (
	stepDeployed = "deployed"
	stepFailed   = "failed"
	stepSkipped  = "skipped"
)

// BatchRenderer renders the outcome of a batch run
type BatchRenderer struct {
	out     io.Writer
	json    bool
	network *config.Network
}

// NewBatchRenderer creates a new batch renderer. network is used for explorer links.
func NewBatchRenderer(out io.Writer, jsonOutput bool, network *config.Network) *BatchRenderer {
	return &BatchRenderer{out: out, json: jsonOutput, network: network}
}

// Render renders the batch summary
func (r *BatchRenderer) Render(result *usecase.BatchResult) error {
	steps := summarizeSteps(result)

	if r.json {
		return r.renderJSON(result, steps)
	}

	if len(steps) == 0 {
		return nil
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("Deployment summary"))
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "STEP", "CONTRACT", "STATUS", "ADDRESS"})
	for _, s := range steps {
		t.AppendRow(table.Row{
			s.Index,
			HumanLabel(s.Label),
			s.Contract,
			statusCell(s.Status),
			addressStyle.Sprint(s.Address),
		})
	}
	t.Render()

	if r.network != nil && r.network.ExplorerURL != "" && len(result.Addresses) > 0 {
		fmt.Fprintln(r.out)
		for _, s := range steps {
			if s.Address == "" {
				continue
			}
			fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("%-24s", HumanLabel(s.Label)), faintStyle.Sprint(r.network.AddressURL(s.Address)))
			if s.TxHash != "" {
				fmt.Fprintf(r.out, "  %-24s %s\n", "", faintStyle.Sprint(r.network.TxURL(s.TxHash)))
			}
		}
	}

	fmt.Fprintln(r.out)
	if result.Success() {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%d contracts deployed (run %s)", len(result.Addresses), result.RunID)))
	} else if result.Err != nil {
		fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%s: %v", result.Status, result.Err)))
	}
	return nil
}

func (r *BatchRenderer) renderJSON(result *usecase.BatchResult, steps []batchStepJSON) error {
	out := batchJSON{
		RunID:     result.RunID,
		Status:    string(result.Status),
		Steps:     steps,
		Addresses: make(map[string]string, len(result.Addresses)),
		Logs:      result.Logs,
	}
	if result.Plan != nil {
		out.Plan = result.Plan.Name
		out.ChainID = result.Plan.ChainID
	}
	for label, addr := range result.Addresses {
		out.Addresses[label] = addr.Hex()
	}
	if out.Logs == nil {
		out.Logs = []models.LogEntry{}
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return WriteJSON(r.out, out)
}

// summarizeSteps lists every planned step, marking the ones never reached as skipped
func summarizeSteps(result *usecase.BatchResult) []batchStepJSON {
	byIndex := make(map[int]*usecase.StepRecord, len(result.Steps))
	for _, rec := range result.Steps {
		byIndex[rec.Index] = rec
	}

	var steps []batchStepJSON
	if result.Plan != nil {
		for _, planned := range result.Plan.Steps {
			s := batchStepJSON{
				Index:    planned.Index,
				Label:    planned.Step.Label,
				Contract: planned.Descriptor.Name,
				Status:   stepSkipped,
			}
			if rec, ok := byIndex[planned.Index]; ok {
				fillRecord(&s, rec)
			}
			steps = append(steps, s)
		}
		return steps
	}

	for _, rec := range result.Steps {
		s := batchStepJSON{Index: rec.Index, Label: rec.Label}
		if rec.Contract != nil {
			s.Contract = rec.Contract.Name
		}
		fillRecord(&s, rec)
		steps = append(steps, s)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Index < steps[j].Index })
	return steps
}

func fillRecord(s *batchStepJSON, rec *usecase.StepRecord) {
	s.Args = rec.Args
	if rec.Err != nil {
		s.Status = stepFailed
		s.Error = rec.Err.Error()
	}
	if rec.Result != nil {
		s.Address = rec.Result.ContractAddress.Hex()
		s.TxHash = rec.Result.TransactionHash.Hex()
		s.BlockNumber = rec.Result.BlockNumber
		s.GasUsed = rec.Result.GasUsed
		if rec.Err == nil {
			s.Status = stepDeployed
		}
	}
}

func statusCell(status string) string {
	switch status {
	case stepDeployed:
		return successStyle.Sprint("✓ " + status)
	case stepFailed:
		return failureStyle.Sprint("✗ " + status)
	default:
		return faintStyle.Sprint("- " + status)
	}
}

var _ Renderer[*usecase.BatchResult] = (*BatchRenderer)(nil)
