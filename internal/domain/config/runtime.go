package config

import (
	"time"
)

// DefaultReceiptTimeout bounds how long a deployment waits to be mined
const DefaultReceiptTimeout = 120 * time.Second

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	RegistryPath string

	// Network is the target network for deployments, nil if not resolvable
	Network  *Network
	Networks map[string]*Network

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration
	ReceiptTimeout time.Duration

	// PrivateKey is the hex-encoded deployer key, never rendered
	PrivateKey string

	// Config source tracking
	ConfigSource string // path of salvo.toml, empty when running on defaults
}

// Network represents network configuration
type Network struct {
	ChainID     uint64 `json:"chainId" toml:"chain_id"`
	Name        string `json:"name" toml:"-"`
	RPCURL      string `json:"rpcUrl" toml:"rpc_url"`
	ExplorerURL string `json:"explorerUrl,omitempty" toml:"explorer_url"`
}

// AddressURL returns the explorer page for an address, empty without an explorer
func (n *Network) AddressURL(address string) string {
	if n == nil || n.ExplorerURL == "" {
		return ""
	}
	return n.ExplorerURL + "/address/" + address
}

// TxURL returns the explorer page for a transaction, empty without an explorer
func (n *Network) TxURL(hash string) string {
	if n == nil || n.ExplorerURL == "" {
		return ""
	}
	return n.ExplorerURL + "/tx/" + hash
}
