package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/salvo/internal/domain/config"
)

// BaseSepoliaChainID is the chain the built-in plan deploys to
const BaseSepoliaChainID uint64 = 84532

// defaultNetworks are available without any salvo.toml
var defaultNetworks = []config.Network{
	{ChainID: BaseSepoliaChainID, Name: "base-sepolia", RPCURL: "https://sepolia.base.org", ExplorerURL: "https://sepolia.basescan.org"},
	{ChainID: 8453, Name: "base", RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org"},
	{ChainID: 11155111, Name: "sepolia", RPCURL: "https://rpc.sepolia.org", ExplorerURL: "https://sepolia.etherscan.io"},
	{ChainID: 31337, Name: "anvil", RPCURL: "http://localhost:8545", ExplorerURL: ""},
}

// NetworkResolver resolves network names and chain ids to configurations
type NetworkResolver struct {
	networks map[string]*config.Network
}

// NewNetworkResolver creates a resolver seeded with the defaults and overlaid
// with the networks from salvo.toml
func NewNetworkResolver(configured map[string]*config.Network) *NetworkResolver {
	r := &NetworkResolver{
		networks: make(map[string]*config.Network),
	}

	for _, network := range defaultNetworks {
		n := network
		r.networks[n.Name] = &n
	}

	for name, network := range configured {
		n := *network
		n.Name = name
		if n.ExplorerURL == "" {
			n.ExplorerURL = explorerForChain(n.ChainID)
		}
		r.networks[strings.ToLower(name)] = &n
	}

	return r
}

// Resolve resolves a network by name or by chain ID
func (r *NetworkResolver) Resolve(input string) (*config.Network, error) {
	if input == "" {
		return nil, fmt.Errorf("network not specified")
	}

	if network, ok := r.networks[strings.ToLower(input)]; ok {
		return network, nil
	}

	if chainID, err := strconv.ParseUint(input, 10, 64); err == nil {
		if network := r.ByChainID(chainID); network != nil {
			return network, nil
		}
	}

	return nil, fmt.Errorf("unknown network: %s (known: %s)", input, strings.Join(r.Names(), ", "))
}

// ByChainID returns the first network (by name) with the given chain id, or nil
func (r *NetworkResolver) ByChainID(chainID uint64) *config.Network {
	for _, name := range r.Names() {
		if r.networks[name].ChainID == chainID {
			return r.networks[name]
		}
	}
	return nil
}

// Names returns the sorted network names
func (r *NetworkResolver) Names() []string {
	names := lo.Keys(r.networks)
	sort.Strings(names)
	return names
}

// All returns a copy of the network table
func (r *NetworkResolver) All() map[string]*config.Network {
	return lo.Assign(r.networks)
}

// explorerForChain returns a default explorer for well-known chains
func explorerForChain(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 8453:
		return "https://basescan.org"
	case BaseSepoliaChainID:
		return "https://sepolia.basescan.org"
	case 10:
		return "https://optimistic.etherscan.io"
	case 42161:
		return "https://arbiscan.io"
	case 137:
		return "https://polygonscan.com"
	default:
		return ""
	}
}
