package deployment

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autostack/stackd/app"
	"github.com/autostack/stackd/cmd/output"
)

func NewCmdDeploymentCancel() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <deployment-id>",
		Short: "Cancel an in-flight deployment",
		Long: `Request cancellation of a pending or running deployment. The running
terraform step is not interrupted, but its result is discarded and the
deployment is marked cancelled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := app.GetOrchestrator()
			if orch == nil {
				return fmt.Errorf("application not initialized - orchestrator is nil")
			}

			if _, err := orch.Cancel(args[0]); err != nil {
				return fmt.Errorf("failed to cancel deployment: %w", err)
			}

			return output.FprintSuccess(cmd, "Deployment %s cancelled", args[0])
		},
	}
}
