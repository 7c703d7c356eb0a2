package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"autoconf.dev/pkg/autoconf/internal/domain"
	m "autoconf.dev/pkg/autoconf/internal/model"
)

var dryRunFlag bool
var reportFlag string

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or append to the configured files",
		Long:  applyLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workspace, specs, settings, err := runArgsFromConfig()
			if err != nil {
				return err
			}

			return workflow.Apply(cmdContext(cmd), domain.ApplyArgs{
				RunArgs: domain.RunArgs{
					Specs:     specs,
					Workspace: workspace,
					Settings:  settings,
				},
				DryRun: viper.GetBool(dryRunConfigKey),
				Report: m.Path(viper.GetString(reportConfigKey)),
			})
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&dryRunFlag, dryRunFlagName, "n", viper.GetBool(dryRunConfigKey), "show what would change without writing")
	bindFlagToConfig(cmd.Flags().Lookup(dryRunFlagName), dryRunConfigKey)
	cmd.Flags().StringVarP(&reportFlag, reportFlagName, "r", viper.GetString(reportConfigKey), "write a YAML report of the pass to this path")
	bindFlagToConfig(cmd.Flags().Lookup(reportFlagName), reportConfigKey)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
