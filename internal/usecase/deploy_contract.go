package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// DeployContract submits a single deployment transaction and waits for it to be mined
type DeployContract struct {
	wallet  Wallet
	chain   ChainReader
	timeout time.Duration
	log     *slog.Logger
}

// NewDeployContract creates a new single-deploy executor
func NewDeployContract(
	cfg *config.RuntimeConfig,
	wallet Wallet,
	chain ChainReader,
	log *slog.Logger,
) *DeployContract {
	timeout := cfg.ReceiptTimeout
	if timeout <= 0 {
		timeout = config.DefaultReceiptTimeout
	}
	return &DeployContract{
		wallet:  wallet,
		chain:   chain,
		timeout: timeout,
		log:     log.With("component", "DeployContract"),
	}
}

// Deploy sends exactly one transaction for step. onSubmitted, if set, is called
// with the transaction hash before the receipt wait starts.
func (uc *DeployContract) Deploy(ctx context.Context, step *models.DeploymentStep, onSubmitted func(common.Hash)) (*models.DeploymentResult, error) {
	descriptor := step.Descriptor

	code, err := decodeBytecode(descriptor)
	if err != nil {
		return nil, err
	}

	if inputs := descriptor.ConstructorInputs(); len(step.ResolvedArgs) != len(inputs) {
		return nil, fmt.Errorf("%w: %s expects %d constructor arguments, got %d",
			domain.ErrInvalidArgument, descriptor.Name, len(inputs), len(step.ResolvedArgs))
	}

	uc.log.Debug("submitting deployment", "contract", descriptor.Name, "label", step.Label, "args", len(step.ResolvedArgs))

	txHash, err := uc.wallet.SubmitDeployment(ctx, descriptor.ABI, code, step.ResolvedArgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}

	if onSubmitted != nil {
		onSubmitted(txHash)
	}

	receipt, err := uc.chain.AwaitReceipt(ctx, txHash, uc.timeout)
	if err != nil {
		if errors.Is(err, domain.ErrConfirmationTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}

	if receipt.Status != 1 {
		return nil, fmt.Errorf("%w: transaction %s reverted in block %d", domain.ErrTransactionFailed, txHash.Hex(), receipt.BlockNumber)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: receipt for %s has no contract address", domain.ErrTransactionFailed, txHash.Hex())
	}

	uc.log.Debug("deployment mined", "contract", descriptor.Name, "address", receipt.ContractAddress.Hex(), "block", receipt.BlockNumber)

	return &models.DeploymentResult{
		ContractAddress: receipt.ContractAddress,
		TransactionHash: txHash,
		BlockNumber:     receipt.BlockNumber,
		GasUsed:         receipt.GasUsed,
	}, nil
}

// decodeBytecode checks that the descriptor carries 0x-prefixed hex bytecode
func decodeBytecode(descriptor *models.ContractDescriptor) ([]byte, error) {
	if !strings.HasPrefix(descriptor.Bytecode, "0x") || len(descriptor.Bytecode) <= 2 {
		return nil, fmt.Errorf("%w: invalid bytecode format for %s", domain.ErrMalformedBytecode, descriptor.Name)
	}
	code, err := hexutil.Decode(descriptor.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bytecode format for %s: %v", domain.ErrMalformedBytecode, descriptor.Name, err)
	}
	return code, nil
}
