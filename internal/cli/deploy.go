package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/salvo/internal/app"
	"github.com/trebuchet-org/salvo/internal/cli/render"
	"github.com/trebuchet-org/salvo/internal/domain/models"
	"github.com/trebuchet-org/salvo/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		rawArgs []string
		label   string
	)

	cmd := &cobra.Command{
		Use:   "deploy [contract]",
		Short: "Deploy a single contract",
		Long: `Deploy one contract from the registry.

Constructor arguments are given with --arg name=value. Any argument left out
is prompted for, unless --non-interactive is set. Array arguments take a
comma-separated list. Without a contract name an interactive picker is shown.`,
		Example: `  # Deploy with all arguments on the command line
  salvo deploy Salesperson --arg _idNumber=55555 --arg _managerId=12345 --arg _hourlyRate=20

  # Pick a contract and enter arguments interactively
  salvo deploy`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			values, err := parseArgFlags(rawArgs)
			if err != nil {
				return err
			}

			ref, err := resolveDeployTarget(cmd, app, args)
			if err != nil {
				return err
			}

			result, err := app.DeploySingle.Execute(cmd.Context(), usecase.DeploySingleParams{
				Contract: ref,
				Label:    label,
				Args:     values,
			})
			return renderBatch(cmd, app, result, err)
		},
	}

	cmd.Flags().StringArrayVarP(&rawArgs, "arg", "a", nil, "Constructor argument as name=value (repeatable)")
	cmd.Flags().StringVar(&label, "label", "", "Label for the deployment (defaults to the contract name in camelCase)")

	return cmd
}

func resolveDeployTarget(cmd *cobra.Command, app *app.App, args []string) (models.ContractRef, error) {
	if len(args) == 1 {
		return parseContractRef(args[0]), nil
	}
	if app.Config.NonInteractive {
		return models.ContractRef{}, fmt.Errorf("contract is required in non-interactive mode")
	}

	list, err := app.ListContracts.Run(cmd.Context(), usecase.ListContractsParams{})
	if err != nil {
		return models.ContractRef{}, err
	}
	selected, err := app.Selector.SelectContract(cmd.Context(), list.Contracts, "Select a contract to deploy")
	if err != nil {
		return models.ContractRef{}, err
	}
	return models.ContractRefByID(selected.ID), nil
}

// parseArgFlags splits name=value pairs. Values may contain '='.
func parseArgFlags(raw []string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --arg %q (expected name=value)", pair)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("argument %s given more than once", name)
		}
		values[name] = value
	}
	return values, nil
}

// renderBatch prints the batch summary, if there is one, and passes err through
// so the command exits non-zero on failure
func renderBatch(cmd *cobra.Command, app *app.App, result *usecase.BatchResult, err error) error {
	if result == nil {
		return err
	}

	network := app.Config.Network
	if app.Session != nil && app.Session.Network() != nil {
		network = app.Session.Network()
	}
	if renderErr := render.NewBatchRenderer(cmd.OutOrStdout(), app.Config.JSON, network).Render(result); renderErr != nil {
		return renderErr
	}
	return err
}
