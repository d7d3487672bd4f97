package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

const bannerWidth = 60

// DeployBatch runs a deployment plan step by step, feeding the addresses of
// finished steps into the arguments of later ones
type DeployBatch struct {
	registry ContractRegistry
	builder  ArgumentBuilder
	wallet   Wallet
	deployer *DeployContract
	progress ProgressSink
	log      *slog.Logger
	now      func() time.Time
}

// NewDeployBatch creates a new batch orchestrator
func NewDeployBatch(
	registry ContractRegistry,
	builder ArgumentBuilder,
	wallet Wallet,
	deployer *DeployContract,
	progress ProgressSink,
	log *slog.Logger,
) *DeployBatch {
	if progress == nil {
		progress = NopProgress{}
	}
	return &DeployBatch{
		registry: registry,
		builder:  builder,
		wallet:   wallet,
		deployer: deployer,
		progress: progress,
		log:      log.With("component", "DeployBatch"),
		now:      time.Now,
	}
}

// DeployBatchParams contains parameters for a batch run
type DeployBatchParams struct {
	Plan *models.DeploymentPlan
}

// StepRecord is the outcome of one executed step
type StepRecord struct {
	Index    int
	Label    string
	Contract *models.ContractDescriptor
	Args     []string
	Result   *models.DeploymentResult
	Err      error
}

// BatchResult contains the result of a batch run. Addresses holds every
// contract deployed before the run ended, including on failure.
type BatchResult struct {
	RunID      string
	Plan       *ExecutionPlan
	Status     BatchStatus
	Steps      []*StepRecord
	Addresses  map[string]common.Address
	Logs       []models.LogEntry
	FailedStep *StepRecord
	Err        error
}

// Success reports whether every step was deployed
func (r *BatchResult) Success() bool {
	return r.Status == BatchSucceeded
}

// batchRun holds everything one Execute call mutates
type batchRun struct {
	ctx    context.Context
	state  *BatchState
	result *BatchResult
}

// Execute validates and orders the plan, checks the network, then deploys each
// step in sequence. It stops at the first failing step. Plan errors are
// returned without a result; run errors are returned with the partial result.
func (uc *DeployBatch) Execute(ctx context.Context, params DeployBatchParams) (*BatchResult, error) {
	plan, err := BuildExecutionPlan(ctx, uc.registry, params.Plan)
	if err != nil {
		return nil, err
	}

	run := &batchRun{
		ctx:   ctx,
		state: newBatchState(len(plan.Steps), uc.now),
		result: &BatchResult{
			RunID: uuid.NewString(),
			Plan:  plan,
		},
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StagePlanCreated,
		Total:    len(plan.Steps),
		Metadata: plan,
	})

	uc.log.Info("starting batch", "run", run.result.RunID, "plan", plan.Name, "steps", len(plan.Steps))

	if err := uc.ensureNetwork(run, plan.ChainID); err != nil {
		_ = run.state.transition(BatchAbortedWrongNetwork, 0)
		uc.emit(run, fmt.Sprintf("DEPLOYMENT FAILED: %v", err), models.SeverityError, nil)
		return uc.finish(run, err)
	}

	uc.emit(run, fmt.Sprintf("Starting deployment of %d contracts...", len(plan.Steps)), models.SeverityInfo, nil)
	uc.emit(run, strings.Repeat("=", bannerWidth), models.SeverityInfo, nil)

	for _, step := range plan.Steps {
		if err := run.state.transition(BatchRunning, step.Index); err != nil {
			return nil, err
		}

		record, err := uc.executeStep(run, step)
		run.result.Steps = append(run.result.Steps, record)

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepCompleted,
			Current:  step.Index,
			Total:    len(plan.Steps),
			Metadata: record,
		})

		if err != nil {
			run.result.FailedStep = record
			_ = run.state.transition(BatchFailed, step.Index)
			uc.emit(run, fmt.Sprintf("DEPLOYMENT FAILED: %v", err), models.SeverityError, nil)
			return uc.finish(run, err)
		}
	}

	_ = run.state.transition(BatchSucceeded, run.state.StepIndex)
	uc.emit(run, strings.Repeat("=", bannerWidth), models.SeverityInfo, nil)
	uc.emit(run, "ALL CONTRACTS DEPLOYED SUCCESSFULLY!", models.SeveritySuccess, nil)
	uc.emit(run, strings.Repeat("=", bannerWidth), models.SeverityInfo, nil)

	return uc.finish(run, nil)
}

// ensureNetwork makes at most one switch request and never sends a transaction
func (uc *DeployBatch) ensureNetwork(run *batchRun, target uint64) error {
	if target == 0 {
		return nil
	}

	current, err := uc.wallet.CurrentNetworkID(run.ctx)
	if err != nil {
		return fmt.Errorf("%w: could not read active network: %w", domain.ErrWrongNetwork, err)
	}

	uc.progress.OnProgress(run.ctx, ProgressEvent{
		Stage:    StageNetworkCheck,
		Total:    run.state.Total,
		Message:  fmt.Sprintf("active chain %d, target chain %d", current, target),
		Metadata: map[string]uint64{"current": current, "target": target},
	})

	if current == target {
		return nil
	}

	uc.emit(run, fmt.Sprintf("Switching network from chain %d to chain %d...", current, target), models.SeverityInfo, nil)
	if err := uc.wallet.RequestNetworkSwitch(run.ctx, target); err != nil {
		return fmt.Errorf("%w: switch to chain %d failed: %w", domain.ErrWrongNetwork, target, err)
	}

	current, err = uc.wallet.CurrentNetworkID(run.ctx)
	if err != nil {
		return fmt.Errorf("%w: could not read active network: %w", domain.ErrWrongNetwork, err)
	}
	if current != target {
		return fmt.Errorf("%w: still on chain %d after switching to %d", domain.ErrWrongNetwork, current, target)
	}
	return nil
}

func (uc *DeployBatch) executeStep(run *batchRun, planned *PlannedStep) (*StepRecord, error) {
	descriptor := planned.Descriptor
	record := &StepRecord{
		Index:    planned.Index,
		Label:    planned.Step.Label,
		Contract: descriptor,
	}

	uc.progress.OnProgress(run.ctx, ProgressEvent{
		Stage:    StageStepStarting,
		Current:  planned.Index,
		Total:    run.state.Total,
		Message:  descriptor.Name,
		Metadata: planned,
	})
	uc.emit(run, fmt.Sprintf("Deploying %s...", descriptor.Name), models.SeverityInfo, nil)

	fail := func(err error) (*StepRecord, error) {
		record.Err = err
		uc.emit(run, fmt.Sprintf("Failed to deploy %s: %v", descriptor.Name, err), models.SeverityError, nil)
		uc.emit(run, "", models.SeverityInfo, nil)
		return record, err
	}

	if err := run.ctx.Err(); err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err))
	}

	raw, err := resolveArgs(planned, run.state.Addresses)
	if err != nil {
		return fail(err)
	}

	args, err := uc.builder.Build(planned.Inputs, raw)
	if err != nil {
		return fail(err)
	}
	record.Args = uc.builder.Literals(planned.Inputs, args)

	step := &models.DeploymentStep{
		Descriptor:   descriptor,
		ResolvedArgs: args,
		Label:        planned.Step.Label,
	}

	result, err := uc.deployer.Deploy(run.ctx, step, func(hash common.Hash) {
		uc.emit(run, fmt.Sprintf("Transaction sent for %s: %s", descriptor.Name, hash.Hex()), models.SeverityPending, nil)
		uc.progress.OnProgress(run.ctx, ProgressEvent{
			Stage:    StageAwaitingReceipt,
			Current:  planned.Index,
			Total:    run.state.Total,
			Message:  fmt.Sprintf("Waiting for %s to be mined", descriptor.Name),
			Spinner:  true,
			Metadata: hash,
		})
	})
	if err != nil {
		return fail(err)
	}

	record.Result = result
	run.state.Addresses[planned.Step.Label] = result.ContractAddress
	address := result.ContractAddress
	uc.emit(run, fmt.Sprintf("%s deployed successfully!", descriptor.Name), models.SeveritySuccess, &address)
	uc.emit(run, "", models.SeverityInfo, nil)

	uc.log.Info("step deployed", "step", planned.Index, "label", planned.Step.Label, "address", address.Hex(), "tx", result.TransactionHash.Hex())
	return record, nil
}

// resolveArgs turns a step's argument rules into the raw strings the argument
// builder consumes, substituting addresses of finished steps
func resolveArgs(planned *PlannedStep, addresses map[string]common.Address) (map[string]string, error) {
	raw := make(map[string]string, len(planned.Inputs))
	for i, input := range planned.Inputs {
		rule := planned.Step.Args[i]
		if !rule.IsRef() {
			raw[input.Name] = rule.Literal
			continue
		}

		values := make([]string, 0, len(rule.Refs))
		for _, ref := range rule.Refs {
			addr, ok := addresses[ref]
			if !ok {
				return nil, fmt.Errorf("%w: %s needs the address of step '%s', which has not been deployed",
					domain.ErrMissingArgument, input.Name, ref)
			}
			values = append(values, addr.Hex())
		}
		raw[input.Name] = strings.Join(values, ",")
	}
	return raw, nil
}

// emit appends to the batch log and publishes the entry
func (uc *DeployBatch) emit(run *batchRun, message string, severity models.Severity, address *common.Address) {
	entry := run.state.appendLog(message, severity, address)
	uc.progress.OnProgress(run.ctx, ProgressEvent{
		Stage:    StageLog,
		Current:  run.state.StepIndex,
		Total:    run.state.Total,
		Message:  message,
		Metadata: entry,
	})
}

func (uc *DeployBatch) finish(run *batchRun, err error) (*BatchResult, error) {
	run.state.Reason = err
	result := run.result
	result.Status = run.state.Status
	result.Addresses = run.state.AddressesCopy()
	result.Logs = append([]models.LogEntry(nil), run.state.Logs...)
	result.Err = err

	uc.progress.OnProgress(run.ctx, ProgressEvent{
		Stage:    StageBatchCompleted,
		Current:  run.state.StepIndex,
		Total:    run.state.Total,
		Metadata: result,
	})

	if err != nil {
		uc.log.Warn("batch ended", "run", result.RunID, "status", result.Status, "deployed", len(result.Addresses), "error", err)
	} else {
		uc.log.Info("batch ended", "run", result.RunID, "status", result.Status, "deployed", len(result.Addresses))
	}
	return result, err
}
