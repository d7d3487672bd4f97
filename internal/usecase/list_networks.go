package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain/config"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	// Currently no parameters, but we keep the struct for future extensibility
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
}

// NetworkStatus represents one configured network
type NetworkStatus struct {
	Name        string `json:"name"`
	ChainID     uint64 `json:"chainId"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	Current     bool   `json:"current"`
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	cfg *config.RuntimeConfig
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig) *ListNetworks {
	return &ListNetworks{cfg: cfg}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	names := lo.Keys(uc.cfg.Networks)
	sort.Strings(names)

	networks := make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		network := uc.cfg.Networks[name]
		networks = append(networks, NetworkStatus{
			Name:        name,
			ChainID:     network.ChainID,
			RPCURL:      network.RPCURL,
			ExplorerURL: network.ExplorerURL,
			Current:     uc.cfg.Network != nil && uc.cfg.Network.Name == network.Name,
		})
	}

	return &ListNetworksResult{
		Networks: networks,
	}, nil
}
