//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/salvo/internal/adapters"
	"github.com/trebuchet-org/salvo/internal/config"
	"github.com/trebuchet-org/salvo/internal/logging"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewListContracts,
		usecase.NewInspectContract,
		usecase.NewListNetworks,
		usecase.NewPlanBatch,
		usecase.NewDeployContract,
		usecase.NewDeployBatch,
		usecase.NewDeploySingle,

		// App
		NewApp,
	)
	return nil, nil
}
