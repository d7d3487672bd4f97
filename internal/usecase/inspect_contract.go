package usecase

import (
	"context"
	"sort"

	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// InspectContractResult describes one registry entry
type InspectContractResult struct {
	Contract      *models.ContractDescriptor
	Inputs        []models.ConstructorInput
	Functions     []string
	Events        []string
	BytecodeBytes int
}

// InspectContract shows the constructor and interface of a single contract
type InspectContract struct {
	registry ContractRegistry
}

// NewInspectContract creates a new InspectContract use case
func NewInspectContract(registry ContractRegistry) *InspectContract {
	return &InspectContract{registry: registry}
}

// Run executes the use case
func (uc *InspectContract) Run(ctx context.Context, ref models.ContractRef) (*InspectContractResult, error) {
	contract, err := uc.registry.GetContract(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := &InspectContractResult{
		Contract: contract,
		Inputs:   contract.ConstructorInputs(),
	}

	for _, method := range contract.ABI.Methods {
		result.Functions = append(result.Functions, method.Sig)
	}
	for _, event := range contract.ABI.Events {
		result.Events = append(result.Events, event.Sig)
	}
	sort.Strings(result.Functions)
	sort.Strings(result.Events)

	if code, err := decodeBytecode(contract); err == nil {
		result.BytecodeBytes = len(code)
	}

	return result, nil
}
