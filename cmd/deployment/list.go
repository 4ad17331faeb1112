package deployment

import (
	"github.com/spf13/cobra"

	"github.com/autostack/stackd/app"
	"github.com/autostack/stackd/cmd/output"
	"github.com/autostack/stackd/cmd/utils"
)

func NewCmdDeploymentList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all deployments",
		Long: `Display all deployments known to stackd.

Shows deployment information in a table format including:
- Deployment id, project name and region
- Current lifecycle status
- Creation and update timestamps`,
		Run: func(cmd *cobra.Command, args []string) {
			deployments, err := app.GetOrchestrator().List()
			if err != nil {
				utils.HandleCommandError("listing deployments", err)
				return
			}

			out, err := output.PrintDeploymentList(deployments)
			if err != nil {
				utils.HandleCommandError("printing deployment list table", err)
				return
			}

			if err := output.FprintPlain(cmd, "%s", out); err != nil {
				utils.HandleCommandError("printing deployment list output", err)
			}
		},
	}
}
