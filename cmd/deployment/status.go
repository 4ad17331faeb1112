package deployment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autostack/stackd/app"
	"github.com/autostack/stackd/cmd/output"
)

func NewCmdDeploymentStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <deployment-id>",
		Short: "Show the status of a deployment",
		Long: `Display the current lifecycle status of a deployment, including its
URL, state location and last error if any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploymentStatus(cmd, args)
		},
	}

	cmd.Flags().Bool("logs", false, "Include terraform logs in the output")
	return cmd
}

func runDeploymentStatus(cmd *cobra.Command, args []string) error {
	orch := app.GetOrchestrator()
	if orch == nil {
		return fmt.Errorf("application not initialized - orchestrator is nil")
	}

	deployment, err := orch.GetStatus(args[0])
	if err != nil {
		return fmt.Errorf("failed to get deployment status: %w", err)
	}

	details, err := output.PrintDeploymentDetails(deployment)
	if err != nil {
		return fmt.Errorf("printing deployment details: %w", err)
	}
	if err := output.FprintPlain(cmd, "%s", details); err != nil {
		return err
	}

	withLogs, _ := cmd.Flags().GetBool("logs")
	if withLogs && deployment.Logs != "" {
		if err := output.FprintPlain(cmd, "\n%s", deployment.Logs); err != nil {
			return err
		}
	}

	return nil
}
