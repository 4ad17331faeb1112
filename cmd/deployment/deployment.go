// Package deployment implements CLI commands for inspecting and managing
// deployments.
package deployment

import (
	"github.com/spf13/cobra"
)

func NewCmdDeployment() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployment",
		Short: "Manage deployments",
		Long:  "Inspect and manage the lifecycle of infrastructure deployments",
	}

	cmd.AddCommand(NewCmdDeploymentList())
	cmd.AddCommand(NewCmdDeploymentStatus())
	cmd.AddCommand(NewCmdDeploymentCancel())
	return cmd
}
