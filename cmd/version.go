package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "unknown"

// buildVersion reports the module version stamped into the binary.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return unknownVersion
	}

	return info.Main.Version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the autoconf build version and the Go version it was built with.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("autoconf version\t", buildVersion())
			cmd.Println("go version\t", runtime.Version())
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
