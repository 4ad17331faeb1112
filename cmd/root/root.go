// Package root implements the command line interface for stackd.
package root

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/autostack/stackd/app"
	"github.com/autostack/stackd/cmd/deployment"
	"github.com/autostack/stackd/cmd/output"
	"github.com/autostack/stackd/cmd/server"
	"github.com/autostack/stackd/cmd/version"
	"github.com/autostack/stackd/config"
	"github.com/autostack/stackd/logging"
)

func Execute() {
	if err := NewCmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCmdRoot() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "stackd",
		Short: "Deployment lifecycle orchestrator for Terraform stacks",
		Long: `Stackd provisions and tears down cloud infrastructure stacks by driving
Terraform with remote S3 state. It tracks every deployment's lifecycle
with full status history.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.NewConfigForCLI(dataDir)
			if err != nil {
				log.Fatalf("Failed to initialize configuration: %s", err)
			}

			output.InitColors(output.NoColor.IsSet())

			// CLI flag overrides config
			logLevel := cfg.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel)

			if err := app.InitializeWithConfig(cfg); err != nil {
				log.Fatalf("Failed to initialize application: %s", err)
			}
		},
	}

	cmd.PersistentFlags().
		StringVarP(&dataDir, "data-dir", "d", "", "Data directory for stackd state and workspaces")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")

	cmd.AddCommand(server.NewCmdServer())
	cmd.AddCommand(deployment.NewCmdDeployment())
	cmd.AddCommand(version.NewCmdVersion())
	return cmd
}
