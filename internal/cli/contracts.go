package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/salvo/internal/cli/render"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// NewContractsCmd creates the contracts command
func NewContractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts [filter]",
		Aliases: []string{"ls"},
		Short:   "List deployable contracts from the registry",
		Example: `  # List every contract
  salvo contracts

  # Only contracts whose name contains "token"
  salvo contracts token`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListContractsParams{}
			if len(args) == 1 {
				params.Filter = args[0]
			}

			result, err := app.ListContracts.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return render.NewContractsRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <contract>",
		Short: "Show a contract's constructor, functions and events",
		Example: `  salvo inspect Salesperson
  salvo inspect 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.InspectContract.Run(cmd.Context(), parseContractRef(args[0]))
			if err != nil {
				return err
			}

			return render.NewContractsRenderer(cmd.OutOrStdout(), app.Config.JSON).RenderInspect(result)
		},
	}
}
