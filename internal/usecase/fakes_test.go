package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	abiadapter "github.com/trebuchet-org/salvo/internal/adapters/abi"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

const testChainID uint64 = 84532

var deployer = common.HexToAddress("0x00000000000000000000000000000000000000d0")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDescriptor builds a registry entry whose constructor takes the given "type name" pairs
func newDescriptor(t *testing.T, id int, name string, params ...string) *models.ContractDescriptor {
	t.Helper()

	inputs := make([]string, 0, len(params))
	for _, p := range params {
		typ, pname, _ := strings.Cut(p, " ")
		inputs = append(inputs, fmt.Sprintf(`{"name":%q,"type":%q,"internalType":%q}`, pname, typ, typ))
	}
	rawABI := `[{"type":"function","name":"ping","inputs":[],"outputs":[],"stateMutability":"view"}]`
	if len(params) > 0 {
		rawABI = fmt.Sprintf(`[{"type":"constructor","inputs":[%s],"stateMutability":"nonpayable"},{"type":"function","name":"ping","inputs":[],"outputs":[],"stateMutability":"view"}]`,
			strings.Join(inputs, ","))
	}

	d := &models.ContractDescriptor{
		ID:          id,
		Name:        name,
		Description: name + " test contract",
		RawABI:      []byte(rawABI),
		Bytecode:    "0x6080604052348015600e575f80fd5b50",
	}
	require.NoError(t, d.ParseABI())
	return d
}

// memRegistry is an in-memory ContractRegistry
type memRegistry struct {
	contracts []*models.ContractDescriptor
}

func (r *memRegistry) ListContracts(ctx context.Context) ([]*models.ContractDescriptor, error) {
	return r.contracts, nil
}

func (r *memRegistry) GetContract(ctx context.Context, ref models.ContractRef) (*models.ContractDescriptor, error) {
	for _, c := range r.contracts {
		if (ref.Name != "" && c.Name == ref.Name) || (ref.Name == "" && c.ID == ref.ID) {
			return c, nil
		}
	}
	return nil, domain.ContractNotFoundErr{Query: ref.String()}
}

// fakeChain plays both the wallet and the chain reader and records the order
// of submissions and receipt observations
type fakeChain struct {
	chainID      uint64
	switchErr    error
	switchCalls  int
	failOnSubmit int
	receiptErr   error
	revert       bool

	nonce     int
	submitted [][]any
	timeline  []string
}

func newFakeChain() *fakeChain {
	return &fakeChain{chainID: testChainID}
}

func (f *fakeChain) CurrentAddress() common.Address {
	return deployer
}

func (f *fakeChain) CurrentNetworkID(ctx context.Context) (uint64, error) {
	return f.chainID, nil
}

func (f *fakeChain) RequestNetworkSwitch(ctx context.Context, chainID uint64) error {
	f.switchCalls++
	if f.switchErr != nil {
		return f.switchErr
	}
	f.chainID = chainID
	return nil
}

func (f *fakeChain) SubmitDeployment(ctx context.Context, contractABI abi.ABI, bytecode []byte, args []any) (common.Hash, error) {
	f.nonce++
	if f.nonce == f.failOnSubmit {
		f.timeline = append(f.timeline, fmt.Sprintf("reject:%d", f.nonce))
		return common.Hash{}, errors.New("insufficient funds for gas")
	}
	f.submitted = append(f.submitted, args)
	f.timeline = append(f.timeline, fmt.Sprintf("submit:%d", f.nonce))
	return common.BigToHash(big.NewInt(int64(f.nonce))), nil
}

func (f *fakeChain) AwaitReceipt(ctx context.Context, txHash common.Hash, timeout time.Duration) (*models.Receipt, error) {
	n := txHash.Big().Int64()
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	f.timeline = append(f.timeline, fmt.Sprintf("receipt:%d", n))
	status := uint64(1)
	if f.revert {
		status = 0
	}
	return &models.Receipt{
		ContractAddress: addressFor(n),
		Status:          status,
		BlockNumber:     uint64(1000 + n),
		GasUsed:         21000,
	}, nil
}

func addressFor(n int64) common.Address {
	return common.BigToAddress(big.NewInt(0xc0de0000 + n))
}

// position returns the index of an entry in the timeline, -1 if absent
func (f *fakeChain) position(entry string) int {
	for i, e := range f.timeline {
		if e == entry {
			return i
		}
	}
	return -1
}

// MockWallet is a mock implementation of Wallet
type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) CurrentAddress() common.Address {
	return m.Called().Get(0).(common.Address)
}

func (m *MockWallet) CurrentNetworkID(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockWallet) RequestNetworkSwitch(ctx context.Context, chainID uint64) error {
	return m.Called(ctx, chainID).Error(0)
}

func (m *MockWallet) SubmitDeployment(ctx context.Context, contractABI abi.ABI, bytecode []byte, args []any) (common.Hash, error) {
	ret := m.Called(ctx, contractABI, bytecode, args)
	return ret.Get(0).(common.Hash), ret.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}


func (m *MockProgressSink) stages() []string {
	stages := make([]string, len(m.events))
	for i, e := range m.events {
		stages[i] = e.Stage
	}
	return stages
}

type batchFixture struct {
	registry *memRegistry
	chain    *fakeChain
	progress *MockProgressSink
	cfg      *config.RuntimeConfig
	batch    *usecase.DeployBatch
}

func newBatchFixture(t *testing.T, contracts ...*models.ContractDescriptor) *batchFixture {
	t.Helper()
	f := &batchFixture{
		registry: &memRegistry{contracts: contracts},
		chain:    newFakeChain(),
		progress: &MockProgressSink{},
		cfg: &config.RuntimeConfig{
			Network:        &config.Network{Name: "base-sepolia", ChainID: testChainID},
			ReceiptTimeout: time.Second,
			NonInteractive: true,
		},
	}
	f.batch = newBatch(f.cfg, f.registry, f.chain, f.chain, f.progress)
	return f
}

func newBatch(cfg *config.RuntimeConfig, registry usecase.ContractRegistry, wallet usecase.Wallet, chain usecase.ChainReader, progress usecase.ProgressSink) *usecase.DeployBatch {
	log := discardLogger()
	deployer := usecase.NewDeployContract(cfg, wallet, chain, log)
	return usecase.NewDeployBatch(registry, abiadapter.NewArgumentBuilder(), wallet, deployer, progress, log)
}

func messages(logs []models.LogEntry) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.Message
	}
	return out
}
