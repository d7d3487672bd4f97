package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/salvo/internal/adapters/chain"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// gas estimates are padded by 20%
const gasBufferPercent = 120

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// KeyedWallet signs deployments with a local private key over the chain session
type KeyedWallet struct {
	session        *chain.Session
	confirmer      Confirmer
	nonInteractive bool
	log            *slog.Logger

	rawKey string
	key    *ecdsa.PrivateKey
	keyErr error
	parsed bool
}

// NewKeyedWallet creates a wallet from cfg.PrivateKey. The key is parsed on
// first use so read-only commands run without one.
func NewKeyedWallet(cfg *config.RuntimeConfig, session *chain.Session, confirmer Confirmer, log *slog.Logger) *KeyedWallet {
	return &KeyedWallet{
		session:        session,
		confirmer:      confirmer,
		nonInteractive: cfg.NonInteractive,
		log:            log.With("component", "KeyedWallet"),
		rawKey:         cfg.PrivateKey,
	}
}

func (w *KeyedWallet) privateKey() (*ecdsa.PrivateKey, error) {
	if w.parsed {
		return w.key, w.keyErr
	}
	w.parsed = true

	raw := strings.TrimPrefix(strings.TrimSpace(w.rawKey), "0x")
	if raw == "" {
		w.keyErr = errors.New("no deployer key configured (set SALVO_PRIVATE_KEY)")
		return nil, w.keyErr
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		// the underlying error can echo key material
		w.keyErr = errors.New("invalid deployer key in SALVO_PRIVATE_KEY")
		return nil, w.keyErr
	}
	w.key = key
	return key, nil
}

// CurrentAddress returns the deployer address, the zero address without a key
func (w *KeyedWallet) CurrentAddress() common.Address {
	key, err := w.privateKey()
	if err != nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(key.PublicKey)
}

// CurrentNetworkID returns the chain id of the connected RPC
func (w *KeyedWallet) CurrentNetworkID(ctx context.Context) (uint64, error) {
	return w.session.ChainID(ctx)
}

// RequestNetworkSwitch asks the user before moving the session to chainID.
// Without a terminal there is nobody to ask, so the switch is rejected.
func (w *KeyedWallet) RequestNetworkSwitch(ctx context.Context, chainID uint64) error {
	target, err := w.session.NetworkFor(chainID)
	if err != nil {
		return err
	}

	if w.nonInteractive || w.confirmer == nil {
		return fmt.Errorf("%w: network switch to %s requires confirmation (run interactively or pass --network %s)",
			domain.ErrUserDeclined, target.Name, target.Name)
	}

	ok, err := w.confirmer.Confirm(ctx, fmt.Sprintf("Switch to %s (chain %d)", target.Name, chainID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: network switch to %s", domain.ErrUserDeclined, target.Name)
	}

	return w.session.Switch(ctx, chainID)
}

// SubmitDeployment signs and broadcasts a contract creation transaction
func (w *KeyedWallet) SubmitDeployment(ctx context.Context, contractABI abi.ABI, bytecode []byte, args []any) (common.Hash, error) {
	key, err := w.privateKey()
	if err != nil {
		return common.Hash{}, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	encodedArgs, err := contractABI.Pack("", args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}
	data := append(append([]byte{}, bytecode...), encodedArgs...)

	client, chainID, err := w.session.Client(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get latest header: %w", err)
	}
	feeCap := new(big.Int).Set(tipCap)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Data:      data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gasLimit = gasLimit * gasBufferPercent / 100

	predicted := crypto.CreateAddress(from, nonce)
	w.log.Debug("prepared deployment",
		slog.String("from", from.Hex()),
		slog.Uint64("nonce", nonce),
		slog.Uint64("gas", gasLimit),
		slog.String("predicted", predicted.Hex()))

	if !w.nonInteractive && w.confirmer != nil {
		ok, err := w.confirmer.Confirm(ctx, fmt.Sprintf("Sign deployment from %s (gas %d, expected address %s)", from.Hex(), gasLimit, predicted.Hex()))
		if err != nil {
			return common.Hash{}, err
		}
		if !ok {
			return common.Hash{}, domain.ErrUserDeclined
		}
	}

	chainIDBig := new(big.Int).SetUint64(chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainIDBig,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainIDBig), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	w.log.Info("deployment sent", slog.String("tx", signed.Hash().Hex()), slog.Uint64("nonce", nonce))
	return signed.Hash(), nil
}

// Ensure the adapter implements the interface
var _ usecase.Wallet = (*KeyedWallet)(nil)
