package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/salvo/internal/app"
	"github.com/trebuchet-org/salvo/internal/config"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "salvo",
		Short: "Deploy a registry of precompiled contracts, one at a time or as a batch",
		Long: `Salvo deploys precompiled contracts from a registry file to an EVM network.

Contracts can be deployed one at a time with constructor arguments given as
flags or typed at a prompt, or as a batch plan whose later steps take the
addresses of contracts deployed earlier in the same run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cobra.OnFinalize(cancel)
			}
			cobra.OnFinalize(appInstance.Close)

			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to deploy to (name or chain id, e.g. base-sepolia, 84532)")
	rootCmd.PersistentFlags().String("registry", "", "Path to the contract registry JSON (default contracts.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Minute, "Overall command timeout")
	rootCmd.PersistentFlags().Duration("receipt-timeout", 0, "How long to wait for each deployment to be mined (default 2m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "deployment",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "registry",
		Title: "Registry Commands",
	})

	for _, c := range []*cobra.Command{NewDeployCmd(), NewBatchCmd(), NewPlanCmd()} {
		c.GroupID = "deployment"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewContractsCmd(), NewInspectCmd(), NewNetworksCmd()} {
		c.GroupID = "registry"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// parseContractRef reads "7", "#7" or a contract name
func parseContractRef(input string) models.ContractRef {
	trimmed := strings.TrimPrefix(strings.TrimSpace(input), "#")
	if id, err := strconv.Atoi(trimmed); err == nil {
		return models.ContractRefByID(id)
	}
	return models.ContractRef{Name: strings.TrimSpace(input)}
}
