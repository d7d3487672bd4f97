package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// Backend is the subset of ethclient the session and wallet use
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Close()
}

// Dialer opens a Backend for an RPC URL
type Dialer func(ctx context.Context, rpcURL string) (Backend, error)

// DialEthclient is the production Dialer
func DialEthclient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Session holds the RPC connection for the active network. It connects
// lazily, so commands that never reach the chain don't need an RPC.
type Session struct {
	network  *config.Network
	networks map[string]*config.Network
	dial     Dialer
	log      *slog.Logger

	client  Backend
	chainID uint64
}

// NewSession creates a session for the configured network
func NewSession(cfg *config.RuntimeConfig, log *slog.Logger) *Session {
	return NewSessionWithDialer(cfg, DialEthclient, log)
}

// NewSessionWithDialer creates a session that connects through dial
func NewSessionWithDialer(cfg *config.RuntimeConfig, dial Dialer, log *slog.Logger) *Session {
	return &Session{
		network:  cfg.Network,
		networks: cfg.Networks,
		dial:     dial,
		log:      log.With("component", "ChainSession"),
	}
}

// Network returns the active network, nil if none is configured
func (s *Session) Network() *config.Network {
	return s.network
}

// Client returns the connected backend and its chain id, connecting on first use
func (s *Session) Client(ctx context.Context) (Backend, uint64, error) {
	if s.client != nil {
		return s.client, s.chainID, nil
	}
	if s.network == nil {
		return nil, 0, fmt.Errorf("no network configured (use --network)")
	}
	if err := s.connect(ctx, s.network); err != nil {
		return nil, 0, err
	}
	return s.client, s.chainID, nil
}

// ChainID returns the chain id reported by the active RPC
func (s *Session) ChainID(ctx context.Context) (uint64, error) {
	_, chainID, err := s.Client(ctx)
	return chainID, err
}

// NetworkFor finds a configured network for a chain id
func (s *Session) NetworkFor(chainID uint64) (*config.Network, error) {
	if s.network != nil && s.network.ChainID == chainID {
		return s.network, nil
	}
	names := make([]string, 0, len(s.networks))
	for name := range s.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := s.networks[name]; n.ChainID == chainID {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no network configured for chain %d", chainID)
}

// Switch connects to the configured network for chainID. The current
// connection is kept if the new one can't be established.
func (s *Session) Switch(ctx context.Context, chainID uint64) error {
	target, err := s.NetworkFor(chainID)
	if err != nil {
		return err
	}

	previous, previousID, previousNetwork := s.client, s.chainID, s.network
	s.client = nil
	if err := s.connect(ctx, target); err != nil {
		s.client, s.chainID, s.network = previous, previousID, previousNetwork
		return err
	}
	if previous != nil {
		previous.Close()
	}

	s.log.Info("switched network", "network", target.Name, "chain_id", chainID)
	return nil
}

func (s *Session) connect(ctx context.Context, network *config.Network) error {
	if network.RPCURL == "" {
		return fmt.Errorf("network %s has no rpc_url", network.Name)
	}

	client, err := s.dial(ctx, network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}

	id, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	if network.ChainID != 0 && id.Uint64() != network.ChainID {
		client.Close()
		return fmt.Errorf("chain ID mismatch for %s: expected %d, got %d", network.Name, network.ChainID, id.Uint64())
	}

	s.client = client
	s.chainID = id.Uint64()
	s.network = network
	s.log.Debug("connected", "network", network.Name, "chain_id", s.chainID)
	return nil
}

// AwaitReceipt polls for the receipt of txHash until it is mined or timeout elapses
func (s *Session) AwaitReceipt(ctx context.Context, txHash common.Hash, timeout time.Duration) (*models.Receipt, error) {
	client, _, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, client, txHash)
	if err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s not mined after %s", domain.ErrConfirmationTimeout, txHash.Hex(), timeout)
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	result := &models.Receipt{
		ContractAddress: receipt.ContractAddress,
		Status:          receipt.Status,
		GasUsed:         receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return result, nil
}

// Close releases the RPC connection
func (s *Session) Close() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

// Ensure the adapter implements the interface
var _ usecase.ChainReader = (*Session)(nil)
