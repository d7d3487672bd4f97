package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

func TestDeployBatch_TwoContractsWithReference(t *testing.T) {
	ctx := context.Background()
	first := newDescriptor(t, 1, "First")
	second := newDescriptor(t, 2, "Second", "address _first")
	f := newBatchFixture(t, first, second)

	plan := &models.DeploymentPlan{
		Name:    "pair",
		ChainID: testChainID,
		Steps: []models.PlanStep{
			{Label: "first", Contract: models.ContractRefByID(1)},
			{Label: "second", Contract: models.ContractRefByID(2), Args: []models.ArgRule{models.RefArg("first")}},
		},
	}

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: plan})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, usecase.BatchSucceeded, result.Status)
	assert.True(t, result.Success())
	require.Len(t, result.Addresses, 2)
	assert.Equal(t, addressFor(1), result.Addresses["first"])
	assert.Equal(t, addressFor(2), result.Addresses["second"])

	require.Len(t, result.Steps, 2)
	assert.Equal(t, []string{result.Addresses["first"].Hex()}, result.Steps[1].Args)
	require.Len(t, f.chain.submitted, 2)
	assert.Equal(t, []any{result.Addresses["first"]}, f.chain.submitted[1])

	banner := strings.Repeat("=", 60)
	assert.Equal(t, []string{
		"Starting deployment of 2 contracts...",
		banner,
		"Deploying First...",
		"Transaction sent for First: " + common.BigToHash(common.Big1).Hex(),
		"First deployed successfully!",
		"",
		"Deploying Second...",
		"Transaction sent for Second: " + common.BigToHash(common.Big2).Hex(),
		"Second deployed successfully!",
		"",
		banner,
		"ALL CONTRACTS DEPLOYED SUCCESSFULLY!",
		banner,
	}, messages(result.Logs))

	var severities []models.Severity
	for _, entry := range result.Logs[2:6] {
		severities = append(severities, entry.Severity)
	}
	assert.Equal(t, []models.Severity{models.SeverityInfo, models.SeverityPending, models.SeveritySuccess, models.SeverityInfo}, severities)
	require.NotNil(t, result.Logs[4].ContractAddress)
	assert.Equal(t, addressFor(1), *result.Logs[4].ContractAddress)

	last := len(result.Logs) - 1
	assert.Equal(t, models.SeveritySuccess, result.Logs[last-1].Severity)
	assert.Equal(t, models.SeverityInfo, result.Logs[last].Severity)
}

func TestDeployBatch_DependentStepWaitsForBothReceipts(t *testing.T) {
	ctx := context.Background()
	sales := newDescriptor(t, 7, "Salesperson", "uint256 _idNumber", "uint256 _managerId", "uint256 _hourlyRate")
	manager := newDescriptor(t, 8, "EngineeringManager", "uint256 _idNumber", "uint256 _managerId", "uint256 _annualSalary")
	inheritance := newDescriptor(t, 9, "InheritanceSubmission", "address _salesPerson", "address _engineeringManager")
	f := newBatchFixture(t, sales, manager, inheritance)

	// Declared out of order on purpose: the dependent step comes first
	plan := &models.DeploymentPlan{
		ChainID: testChainID,
		Steps: []models.PlanStep{
			{Label: "inheritanceSubmission", Contract: models.ContractRef{Name: "InheritanceSubmission"}, Args: []models.ArgRule{
				models.RefArg("salesperson"), models.RefArg("engineeringManager"),
			}},
			{Label: "salesperson", Contract: models.ContractRefByID(7), Args: []models.ArgRule{
				models.LiteralArg("55555"), models.LiteralArg("12345"), models.LiteralArg("20"),
			}},
			{Label: "engineeringManager", Contract: models.ContractRefByID(8), Args: []models.ArgRule{
				models.LiteralArg("54321"), models.LiteralArg("11111"), models.LiteralArg("200000"),
			}},
		},
	}

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: plan})
	require.NoError(t, err)

	assert.Equal(t, []string{"salesperson", "engineeringManager", "inheritanceSubmission"}, result.Plan.Labels())

	submit3 := f.chain.position("submit:3")
	require.NotEqual(t, -1, submit3)
	assert.Less(t, f.chain.position("receipt:1"), submit3)
	assert.Less(t, f.chain.position("receipt:2"), submit3)

	assert.Equal(t, []any{result.Addresses["salesperson"], result.Addresses["engineeringManager"]}, f.chain.submitted[2])
}

func TestDeployBatch_RejectedNetworkSwitchSendsNothing(t *testing.T) {
	ctx := context.Background()
	contract := newDescriptor(t, 1, "BasicMath")
	registry := &memRegistry{contracts: []*models.ContractDescriptor{contract}}
	f := newBatchFixture(t, contract)

	wallet := new(MockWallet)
	wallet.On("CurrentNetworkID", mock.Anything).Return(uint64(1), nil)
	wallet.On("RequestNetworkSwitch", mock.Anything, testChainID).Return(errors.New("user rejected the request"))

	batch := newBatch(f.cfg, registry, wallet, f.chain, f.progress)
	plan := &models.DeploymentPlan{
		ChainID: testChainID,
		Steps:   []models.PlanStep{{Label: "basicMath", Contract: models.ContractRefByID(1)}},
	}

	result, err := batch.Execute(ctx, usecase.DeployBatchParams{Plan: plan})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWrongNetwork)
	assert.Contains(t, err.Error(), "user rejected the request")

	require.NotNil(t, result)
	assert.Equal(t, usecase.BatchAbortedWrongNetwork, result.Status)
	assert.Empty(t, result.Addresses)
	assert.Empty(t, result.Steps)

	wallet.AssertNumberOfCalls(t, "RequestNetworkSwitch", 1)
	wallet.AssertNotCalled(t, "SubmitDeployment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.chain.timeline)
}

func TestDeployBatch_SwitchThatDoesNotTakeEffect(t *testing.T) {
	ctx := context.Background()
	contract := newDescriptor(t, 1, "BasicMath")
	registry := &memRegistry{contracts: []*models.ContractDescriptor{contract}}
	f := newBatchFixture(t, contract)

	wallet := new(MockWallet)
	wallet.On("CurrentNetworkID", mock.Anything).Return(uint64(1), nil)
	wallet.On("RequestNetworkSwitch", mock.Anything, testChainID).Return(nil)

	batch := newBatch(f.cfg, registry, wallet, f.chain, f.progress)
	result, err := batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{
		ChainID: testChainID,
		Steps:   []models.PlanStep{{Label: "basicMath", Contract: models.ContractRefByID(1)}},
	}})

	assert.ErrorIs(t, err, domain.ErrWrongNetwork)
	assert.Equal(t, usecase.BatchAbortedWrongNetwork, result.Status)
	wallet.AssertNumberOfCalls(t, "RequestNetworkSwitch", 1)
	wallet.AssertNotCalled(t, "SubmitDeployment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeployBatch_SwitchesNetworkOnce(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t, newDescriptor(t, 1, "BasicMath"))
	f.chain.chainID = 1

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{
		ChainID: testChainID,
		Steps:   []models.PlanStep{{Label: "basicMath", Contract: models.ContractRefByID(1)}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.chain.switchCalls)
	assert.Equal(t, usecase.BatchSucceeded, result.Status)
	assert.Equal(t, "Switching network from chain 1 to chain 84532...", result.Logs[0].Message)
}

func TestDeployBatch_FailureMidBatchKeepsEarlierResults(t *testing.T) {
	ctx := context.Background()

	var contracts []*models.ContractDescriptor
	var steps []models.PlanStep
	for i := 1; i <= 15; i++ {
		name := fmt.Sprintf("Contract%02d", i)
		contracts = append(contracts, newDescriptor(t, i, name))
		steps = append(steps, models.PlanStep{Label: fmt.Sprintf("c%02d", i), Contract: models.ContractRefByID(i)})
	}
	f := newBatchFixture(t, contracts...)
	f.chain.failOnSubmit = 8

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{ChainID: testChainID, Steps: steps}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransactionFailed)
	assert.Contains(t, err.Error(), "insufficient funds for gas")

	assert.Equal(t, usecase.BatchFailed, result.Status)
	assert.Len(t, result.Addresses, 7)
	for i := 1; i <= 7; i++ {
		assert.Equal(t, addressFor(int64(i)), result.Addresses[fmt.Sprintf("c%02d", i)])
	}
	require.NotNil(t, result.FailedStep)
	assert.Equal(t, 8, result.FailedStep.Index)
	assert.Equal(t, "c08", result.FailedStep.Label)
	assert.Len(t, result.Steps, 8)

	assert.Equal(t, 8, f.chain.nonce, "no submission after the failing step")
	assert.Equal(t, "reject:8", f.chain.timeline[len(f.chain.timeline)-1])

	msgs := messages(result.Logs)
	assert.Contains(t, msgs, "Failed to deploy Contract08: transaction failed: insufficient funds for gas")
	assert.Equal(t, "DEPLOYMENT FAILED: transaction failed: insufficient funds for gas", msgs[len(msgs)-1])
	assert.NotContains(t, msgs, "Deploying Contract09...")
}

func TestDeployBatch_RerunProducesNewAddresses(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t, newDescriptor(t, 1, "BasicMath"), newDescriptor(t, 2, "ControlStructures"))
	plan := &models.DeploymentPlan{
		ChainID: testChainID,
		Steps: []models.PlanStep{
			{Label: "basicMath", Contract: models.ContractRefByID(1)},
			{Label: "controlStructures", Contract: models.ContractRefByID(2)},
		},
	}

	first, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: plan})
	require.NoError(t, err)
	second, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: plan})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, usecase.BatchSucceeded, second.Status)
	for label, addr := range first.Addresses {
		assert.NotEqual(t, addr, second.Addresses[label])
	}
	assert.Len(t, f.chain.submitted, 4)
	assert.Equal(t, len(first.Logs), len(second.Logs))
}

func TestDeployBatch_InvalidLiteralFailsBeforeSubmission(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t, newDescriptor(t, 1, "AddressBook", "address _owner"))

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{
		ChainID: testChainID,
		Steps: []models.PlanStep{{Label: "book", Contract: models.ContractRefByID(1), Args: []models.ArgRule{
			models.LiteralArg("0x12345"),
		}}},
	}})

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, usecase.BatchFailed, result.Status)
	assert.Empty(t, f.chain.submitted)
	assert.Zero(t, f.chain.nonce)
}

func TestDeployBatch_ProgressEvents(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t, newDescriptor(t, 1, "BasicMath"))

	result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{
		ChainID: testChainID,
		Steps:   []models.PlanStep{{Label: "basicMath", Contract: models.ContractRefByID(1)}},
	}})
	require.NoError(t, err)

	stages := f.progress.stages()
	require.NotEmpty(t, stages)
	assert.Equal(t, usecase.StagePlanCreated, stages[0])
	assert.Equal(t, usecase.StageBatchCompleted, stages[len(stages)-1])
	assert.Contains(t, stages, usecase.StageNetworkCheck)
	assert.Contains(t, stages, usecase.StageStepStarting)
	assert.Contains(t, stages, usecase.StageAwaitingReceipt)
	assert.Contains(t, stages, usecase.StageStepCompleted)

	logEvents := 0
	for _, e := range f.progress.events {
		if e.Stage == usecase.StageLog {
			logEvents++
			assert.Equal(t, 1, e.Total)
		}
		if e.Stage == usecase.StageAwaitingReceipt {
			assert.True(t, e.Spinner)
		}
	}
	assert.Equal(t, len(result.Logs), logEvents)
}

func TestDeployBatch_PlanErrorsReturnNoResult(t *testing.T) {
	ctx := context.Background()
	f := newBatchFixture(t,
		newDescriptor(t, 1, "A", "address _b"),
		newDescriptor(t, 2, "B", "address _a"),
		newDescriptor(t, 3, "Counter", "uint256 _start"),
	)

	tests := []struct {
		name  string
		steps []models.PlanStep
	}{
		{"empty plan", nil},
		{"duplicate labels", []models.PlanStep{
			{Label: "x", Contract: models.ContractRefByID(3), Args: []models.ArgRule{models.LiteralArg("1")}},
			{Label: "x", Contract: models.ContractRefByID(3), Args: []models.ArgRule{models.LiteralArg("2")}},
		}},
		{"unknown reference", []models.PlanStep{
			{Label: "a", Contract: models.ContractRefByID(1), Args: []models.ArgRule{models.RefArg("nope")}},
		}},
		{"self reference", []models.PlanStep{
			{Label: "a", Contract: models.ContractRefByID(1), Args: []models.ArgRule{models.RefArg("a")}},
		}},
		{"cycle", []models.PlanStep{
			{Label: "a", Contract: models.ContractRefByID(1), Args: []models.ArgRule{models.RefArg("b")}},
			{Label: "b", Contract: models.ContractRefByID(2), Args: []models.ArgRule{models.RefArg("a")}},
		}},
		{"argument count", []models.PlanStep{
			{Label: "counter", Contract: models.ContractRefByID(3)},
		}},
		{"reference into integer", []models.PlanStep{
			{Label: "counter", Contract: models.ContractRefByID(3), Args: []models.ArgRule{models.LiteralArg("1")}},
			{Label: "other", Contract: models.ContractRefByID(3), Args: []models.ArgRule{models.RefArg("counter")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{ChainID: testChainID, Steps: tt.steps}})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrInvalidPlan)
		})
	}

	t.Run("unknown contract", func(t *testing.T) {
		_, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{
			Steps: []models.PlanStep{{Label: "x", Contract: models.ContractRef{Name: "Missing"}}},
		}})
		assert.ErrorIs(t, err, domain.ErrContractNotFound)
	})

	t.Run("cycle lists the labels", func(t *testing.T) {
		_, err := f.batch.Execute(ctx, usecase.DeployBatchParams{Plan: &models.DeploymentPlan{Steps: tests[4].steps}})
		var cycleErr domain.PlanCycleErr
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"a", "b"}, cycleErr.Labels)
	})

	assert.Zero(t, f.chain.nonce)
	assert.Zero(t, f.chain.switchCalls)
}
