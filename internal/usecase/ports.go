package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// ContractRegistry provides read-only access to the deployable contracts
type ContractRegistry interface {
	ListContracts(ctx context.Context) ([]*models.ContractDescriptor, error)
	GetContract(ctx context.Context, ref models.ContractRef) (*models.ContractDescriptor, error)
}

// ArgumentBuilder turns user-entered strings into typed constructor arguments
type ArgumentBuilder interface {
	Build(inputs []models.ConstructorInput, raw map[string]string) ([]any, error)
	Literals(inputs []models.ConstructorInput, values []any) []string
}

// Wallet is the signing side of the session. It never exposes key material.
type Wallet interface {
	CurrentAddress() common.Address
	CurrentNetworkID(ctx context.Context) (uint64, error)
	RequestNetworkSwitch(ctx context.Context, chainID uint64) error
	SubmitDeployment(ctx context.Context, contractABI abi.ABI, bytecode []byte, args []any) (common.Hash, error)
}

// ChainReader observes transactions on chain
type ChainReader interface {
	AwaitReceipt(ctx context.Context, txHash common.Hash, timeout time.Duration) (*models.Receipt, error)
}

// PlanLoader reads deployment plans from files or from the built-in set
type PlanLoader interface {
	LoadPlan(ctx context.Context, path string) (*models.DeploymentPlan, error)
	BuiltinPlan(name string) (*models.DeploymentPlan, error)
	BuiltinPlans() []string
}

// ArgumentPrompter asks the user for a constructor argument value
type ArgumentPrompter interface {
	PromptArgument(ctx context.Context, contract string, input models.ConstructorInput) (string, error)
}

// ContractSelector lets the user pick a contract when none was named
type ContractSelector interface {
	SelectContract(ctx context.Context, contracts []*models.ContractDescriptor, prompt string) (*models.ContractDescriptor, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// Progress stages emitted by the batch orchestrator
const (
	StagePlanCreated     = "plan_created"
	StageNetworkCheck    = "network_check"
	StageStepStarting    = "step_starting"
	StageAwaitingReceipt = "awaiting_receipt"
	StageStepCompleted   = "step_completed"
	StageLog             = "log"
	StageBatchCompleted  = "batch_completed"
)

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
