package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/salvo/internal/cli/render"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

func planParams(args []string, builtin string) usecase.PlanBatchParams {
	params := usecase.PlanBatchParams{Builtin: builtin}
	if len(args) == 1 {
		params.Path = args[0]
	}
	return params
}

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	var builtin string

	cmd := &cobra.Command{
		Use:   "batch [plan.yaml]",
		Short: "Deploy every contract in a plan, in order",
		Long: `Deploy a batch plan. Steps run one after another; each waits for the
previous deployment to be mined. Steps can take the address of an earlier step
as a constructor argument. The run stops at the first failure; contracts
deployed before it are reported.

Without a plan file the built-in plan is used.`,
		Example: `  # Deploy the built-in plan
  salvo batch

  # Deploy a plan file to a local node
  salvo batch plans/voting.yaml --network anvil`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan, _, err := app.PlanBatch.Load(cmd.Context(), planParams(args, builtin))
			if err != nil {
				return err
			}

			result, err := app.DeployBatch.Execute(cmd.Context(), usecase.DeployBatchParams{Plan: plan})
			return renderBatch(cmd, app, result, err)
		},
	}

	cmd.Flags().StringVar(&builtin, "builtin", "", "Name of a built-in plan (default base-learn)")

	return cmd
}

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var builtin string

	cmd := &cobra.Command{
		Use:   "plan [plan.yaml]",
		Short: "Validate a batch plan and show its execution order",
		Long: `Load and validate a batch plan without touching the network: every
contract must exist, argument counts must match the constructors and
references must point at earlier steps.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.PlanBatch.Run(cmd.Context(), planParams(args, builtin))
			if err != nil {
				return err
			}

			return render.NewPlanRenderer(cmd.OutOrStdout(), app.Config.JSON).Render(result)
		},
	}

	cmd.Flags().StringVar(&builtin, "builtin", "", "Name of a built-in plan (default base-learn)")

	return cmd
}
