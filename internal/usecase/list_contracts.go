package usecase

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// ListContractsParams contains parameters for listing contracts
type ListContractsParams struct {
	// Filter keeps contracts whose name or description contains it, case-insensitively
	Filter string
}

// ListContractsResult contains the registry entries in registry order
type ListContractsResult struct {
	Contracts []*models.ContractDescriptor
	Total     int
}

// ListContracts is a use case for listing deployable contracts
type ListContracts struct {
	registry ContractRegistry
}

// NewListContracts creates a new ListContracts use case
func NewListContracts(registry ContractRegistry) *ListContracts {
	return &ListContracts{registry: registry}
}

// Run executes the use case
func (uc *ListContracts) Run(ctx context.Context, params ListContractsParams) (*ListContractsResult, error) {
	contracts, err := uc.registry.ListContracts(ctx)
	if err != nil {
		return nil, err
	}

	total := len(contracts)
	if filter := strings.ToLower(strings.TrimSpace(params.Filter)); filter != "" {
		contracts = lo.Filter(contracts, func(c *models.ContractDescriptor, _ int) bool {
			return strings.Contains(strings.ToLower(c.Name), filter) ||
				strings.Contains(strings.ToLower(c.Description), filter)
		})
	}

	return &ListContractsResult{
		Contracts: contracts,
		Total:     total,
	}, nil
}
