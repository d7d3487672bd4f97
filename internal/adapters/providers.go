package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/salvo/internal/adapters/abi"
	"github.com/trebuchet-org/salvo/internal/adapters/chain"
	"github.com/trebuchet-org/salvo/internal/adapters/interactive"
	"github.com/trebuchet-org/salvo/internal/adapters/plan"
	"github.com/trebuchet-org/salvo/internal/adapters/progress"
	"github.com/trebuchet-org/salvo/internal/adapters/registry"
	"github.com/trebuchet-org/salvo/internal/adapters/wallet"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// ProvideProgressSink picks the console sink, or a silent one when output is JSON.
// Explorer links follow the session, which may switch networks mid-batch.
func ProvideProgressSink(cfg *config.RuntimeConfig, session *chain.Session) usecase.ProgressSink {
	if cfg.JSON {
		return progress.NewNopSink()
	}
	return progress.NewDeployProgress(session)
}

// RegistrySet provides the contract registry and plan loading
var RegistrySet = wire.NewSet(
	registry.NewContractRegistry,
	wire.Bind(new(usecase.ContractRegistry), new(*registry.ContractRegistry)),

	plan.NewLoader,
	wire.Bind(new(usecase.PlanLoader), new(*plan.Loader)),
)

// ABISet provides argument parsing
var ABISet = wire.NewSet(
	abi.NewArgumentBuilder,
	wire.Bind(new(usecase.ArgumentBuilder), new(*abi.ArgumentBuilder)),
)

// ChainSet provides the RPC session and the signing wallet
var ChainSet = wire.NewSet(
	chain.NewSession,
	wire.Bind(new(usecase.ChainReader), new(*chain.Session)),

	wallet.NewKeyedWallet,
	wire.Bind(new(usecase.Wallet), new(*wallet.KeyedWallet)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewPrompter,
	wire.Bind(new(usecase.ArgumentPrompter), new(*interactive.Prompter)),
	wire.Bind(new(usecase.ContractSelector), new(*interactive.Prompter)),
	wire.Bind(new(wallet.Confirmer), new(*interactive.Prompter)),
)

// ProgressSet provides the progress sink
var ProgressSet = wire.NewSet(
	ProvideProgressSink,
)

// AllAdapters combines all adapter sets
var AllAdapters = wire.NewSet(
	RegistrySet,
	ABISet,
	ChainSet,
	InteractiveSet,
	ProgressSet,
)
