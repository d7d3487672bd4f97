package wallet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/salvo/internal/adapters/chain"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
)

// anvil's first dev account
const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testAddress = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type fakeBackend struct {
	chainID  uint64
	nonce    uint64
	sent     []*types.Transaction
	sendErr  error
	estimate uint64
	closed   bool
}

func (b *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(b.chainID), nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: big.NewInt(5_000_000)}, nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return b.estimate, nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}

func (b *fakeBackend) Close() { b.closed = true }

type stubConfirmer struct {
	answers   []bool
	questions []string
}

func (c *stubConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	c.questions = append(c.questions, question)
	if len(c.answers) == 0 {
		return false, errors.New("no answer")
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

type walletFixture struct {
	cfg      *config.RuntimeConfig
	backends map[string]*fakeBackend
	session  *chain.Session
}

func newWalletFixture(t *testing.T, key string, nonInteractive bool) *walletFixture {
	t.Helper()
	f := &walletFixture{
		backends: map[string]*fakeBackend{
			"http://sepolia": {chainID: 84532, nonce: 3, estimate: 100_000},
			"http://mainnet": {chainID: 8453, estimate: 100_000},
		},
	}
	sepolia := &config.Network{Name: "base-sepolia", ChainID: 84532, RPCURL: "http://sepolia"}
	f.cfg = &config.RuntimeConfig{
		Network: sepolia,
		Networks: map[string]*config.Network{
			"base-sepolia": sepolia,
			"base":         {Name: "base", ChainID: 8453, RPCURL: "http://mainnet"},
		},
		NonInteractive: nonInteractive,
		PrivateKey:     key,
	}
	dial := func(_ context.Context, url string) (chain.Backend, error) {
		b, ok := f.backends[url]
		if !ok {
			return nil, errors.New("unreachable")
		}
		return b, nil
	}
	f.session = chain.NewSessionWithDialer(f.cfg, dial, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func (f *walletFixture) wallet(confirmer Confirmer) *KeyedWallet {
	return NewKeyedWallet(f.cfg, f.session, confirmer, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func storageABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[{"name":"_value","type":"uint256"}]}]`))
	require.NoError(t, err)
	return parsed
}

func TestKeyedWallet_CurrentAddress(t *testing.T) {
	assert.Equal(t, testAddress, newWalletFixture(t, testKey, true).wallet(nil).CurrentAddress())
	assert.Equal(t, testAddress, newWalletFixture(t, strings.TrimPrefix(testKey, "0x"), true).wallet(nil).CurrentAddress())
	assert.Equal(t, common.Address{}, newWalletFixture(t, "", true).wallet(nil).CurrentAddress())
}

func TestKeyedWallet_SubmitDeployment(t *testing.T) {
	f := newWalletFixture(t, testKey, true)
	w := f.wallet(nil)
	bytecode := []byte{0x60, 0x80, 0x60, 0x40}

	hash, err := w.SubmitDeployment(context.Background(), storageABI(t), bytecode, []any{big.NewInt(7)})
	require.NoError(t, err)

	backend := f.backends["http://sepolia"]
	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Nil(t, tx.To())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, uint64(120_000), tx.Gas())
	assert.Equal(t, big.NewInt(11_000_000), tx.GasFeeCap())
	assert.Equal(t, uint64(84532), tx.ChainId().Uint64())

	// bytecode followed by the abi-encoded uint256
	assert.Equal(t, bytecode, tx.Data()[:4])
	assert.Equal(t, common.LeftPadBytes([]byte{7}, 32), tx.Data()[4:])

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, testAddress, sender)
}

func TestKeyedWallet_SubmitDeploymentErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		w := newWalletFixture(t, "", true).wallet(nil)
		_, err := w.SubmitDeployment(context.Background(), storageABI(t), []byte{0x60}, []any{big.NewInt(1)})
		assert.ErrorContains(t, err, "SALVO_PRIVATE_KEY")
	})

	t.Run("malformed key is not echoed", func(t *testing.T) {
		w := newWalletFixture(t, "0xdeadbeef", true).wallet(nil)
		_, err := w.SubmitDeployment(context.Background(), storageABI(t), []byte{0x60}, []any{big.NewInt(1)})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "deadbeef")
	})

	t.Run("argument encoding", func(t *testing.T) {
		w := newWalletFixture(t, testKey, true).wallet(nil)
		_, err := w.SubmitDeployment(context.Background(), storageABI(t), []byte{0x60}, []any{"seven"})
		assert.ErrorContains(t, err, "failed to encode constructor arguments")
	})

	t.Run("send rejected", func(t *testing.T) {
		f := newWalletFixture(t, testKey, true)
		f.backends["http://sepolia"].sendErr = errors.New("insufficient funds")
		_, err := f.wallet(nil).SubmitDeployment(context.Background(), storageABI(t), []byte{0x60}, []any{big.NewInt(1)})
		assert.ErrorContains(t, err, "insufficient funds")
	})

	t.Run("user declines signing", func(t *testing.T) {
		f := newWalletFixture(t, testKey, false)
		confirmer := &stubConfirmer{answers: []bool{false}}
		_, err := f.wallet(confirmer).SubmitDeployment(context.Background(), storageABI(t), []byte{0x60}, []any{big.NewInt(1)})
		assert.ErrorIs(t, err, domain.ErrUserDeclined)
		assert.Empty(t, f.backends["http://sepolia"].sent)
		require.Len(t, confirmer.questions, 1)
		assert.Contains(t, confirmer.questions[0], crypto.CreateAddress(testAddress, 3).Hex())
	})
}

func TestKeyedWallet_RequestNetworkSwitch(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		f := newWalletFixture(t, testKey, false)
		w := f.wallet(&stubConfirmer{answers: []bool{true}})

		id, err := w.CurrentNetworkID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(84532), id)

		require.NoError(t, w.RequestNetworkSwitch(ctx, 8453))
		id, err = w.CurrentNetworkID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(8453), id)
		assert.True(t, f.backends["http://sepolia"].closed)
	})

	t.Run("declined", func(t *testing.T) {
		f := newWalletFixture(t, testKey, false)
		w := f.wallet(&stubConfirmer{answers: []bool{false}})

		err := w.RequestNetworkSwitch(ctx, 8453)
		assert.ErrorIs(t, err, domain.ErrUserDeclined)
		id, err := w.CurrentNetworkID(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(84532), id)
	})

	t.Run("non-interactive", func(t *testing.T) {
		w := newWalletFixture(t, testKey, true).wallet(&stubConfirmer{answers: []bool{true}})
		err := w.RequestNetworkSwitch(ctx, 8453)
		assert.ErrorIs(t, err, domain.ErrUserDeclined)
		assert.Contains(t, err.Error(), "--network base")
	})

	t.Run("unknown chain", func(t *testing.T) {
		w := newWalletFixture(t, testKey, false).wallet(&stubConfirmer{answers: []bool{true}})
		err := w.RequestNetworkSwitch(ctx, 10)
		assert.ErrorContains(t, err, "no network configured for chain 10")
	})
}
