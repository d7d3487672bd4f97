package app

import (
	"github.com/trebuchet-org/salvo/internal/adapters/chain"
	"github.com/trebuchet-org/salvo/internal/domain/config"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Selector usecase.ContractSelector
	Session  *chain.Session

	// Use cases
	ListContracts   *usecase.ListContracts
	InspectContract *usecase.InspectContract
	ListNetworks    *usecase.ListNetworks
	PlanBatch       *usecase.PlanBatch
	DeployBatch     *usecase.DeployBatch
	DeploySingle    *usecase.DeploySingle
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	selector usecase.ContractSelector,
	session *chain.Session,
	listContracts *usecase.ListContracts,
	inspectContract *usecase.InspectContract,
	listNetworks *usecase.ListNetworks,
	planBatch *usecase.PlanBatch,
	deployBatch *usecase.DeployBatch,
	deploySingle *usecase.DeploySingle,
) (*App, error) {
	return &App{
		Config:          cfg,
		Selector:        selector,
		Session:         session,
		ListContracts:   listContracts,
		InspectContract: inspectContract,
		ListNetworks:    listNetworks,
		PlanBatch:       planBatch,
		DeployBatch:     deployBatch,
		DeploySingle:    deploySingle,
	}, nil
}

// Close releases the RPC connection, if one was opened
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Close()
	}
}
