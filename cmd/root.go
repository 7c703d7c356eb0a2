// Package cmd provides the root command and CLI setup for autoconf.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"autoconf.dev/pkg/autoconf/internal/adapter"
	"autoconf.dev/pkg/autoconf/internal/controller"
	"autoconf.dev/pkg/autoconf/internal/domain"
)

var workspaceFS adapter.WorkspaceFS
var envReader adapter.EnvReader
var fileFinder adapter.FileFinder
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

// workspaceRootFlag is a root-level flag shared by commands that read the workspace.
var workspaceRootFlag string

// verboseFlag switches the log file to debug level.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	workspaceFS = adapter.NewLocalWorkspaceFS()
	envReader = adapter.NewOSEnv()
	fileFinder = adapter.NewLocalFileFinder()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		workspaceFS,
		envReader,
		fileFinder,
		reportStore,
		ui,
	)
}

const configHelp = `Desired files are read from the autoConfigurator.files list in autoconf.yaml:

  autoConfigurator:
    files:
      - path: .editorconfig
        content: "root = true\n"
        rules:
          - type: fileNotExists
            value: .editorconfig
      - path: .gitignore
        content: ".env\n"
        append: true
        createIfNotExist: true

Rule types: fileNotExists, envVarSet, fileExistsGlob, folderExists,
settingEquals (key=value), fileContains (path|substring), workspaceName.`

const rootLongDescription = `autoconf provisions a workspace from configuration: for every desired file
it evaluates the file's rules and, when all of them pass, creates the file or
appends to it.

` + configHelp

const applyLongDescription = `Create or append to the configured files whose rules pass.

Existing files are left alone unless append is set; appended content is only
written once.

` + configHelp

const checkLongDescription = `Evaluate the rules of every configured file and print the verdicts without
touching the workspace.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autoconf",
		Short: "Rule-gated workspace file provisioning",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if configReadErr != nil {
				slog.Warn("Failed to read config file", "error", configReadErr)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&workspaceRootFlag, workspaceFlagName, "w",
			viper.GetString(workspaceRootKey),
			"workspace root directory",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(workspaceFlagName), workspaceRootKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
