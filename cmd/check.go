package cmd

import (
	"github.com/spf13/cobra"

	"autoconf.dev/pkg/autoconf/internal/domain"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate file rules without writing",
		Long:  checkLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workspace, specs, settings, err := runArgsFromConfig()
			if err != nil {
				return err
			}

			return workflow.Check(cmdContext(cmd), domain.CheckArgs{
				RunArgs: domain.RunArgs{
					Specs:     specs,
					Workspace: workspace,
					Settings:  settings,
				},
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
