// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/autostack/stackd/domain"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		// Fallback to plain formatting if colors are not supported
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled) and returns it
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// Fprint writes a formatted, optionally colorized message to the command's
// output stream.
func Fprint(cmd *cobra.Command, kind color.Attribute, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(kind, tmpl, a...))
	return err
}

func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Plain, tmpl, a...)
}

func FprintSuccess(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Success, tmpl, a...)
}

func FprintError(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Error, tmpl, a...)
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

func PrintDeploymentDetails(deployment *domain.Deployment) (string, error) {
	data := [][]string{
		{"ID", deployment.ID},
		{"Project", deployment.ProjectName},
		{"Region", deployment.Region},
		{"Status", deployment.Status.String()},
	}

	if deployment.DeploymentURL != nil {
		data = append(data, []string{"URL", *deployment.DeploymentURL})
	}
	if deployment.StateLocation != nil {
		data = append(data, []string{"State", *deployment.StateLocation})
	}
	if deployment.ErrorMessage != nil {
		data = append(data, []string{"Error", *deployment.ErrorMessage})
	}
	if deployment.DeployedAt != nil {
		data = append(data, []string{"Deployed At", deployment.DeployedAt.Format("2006-01-02 15:04:05")})
	}
	data = append(data,
		[]string{"Created At", deployment.CreatedAt.Format("2006-01-02 15:04:05")},
		[]string{"Updated At", deployment.UpdatedAt.Format("2006-01-02 15:04:05")},
	)

	table, err := PrintTable([]string{}, data)
	if err != nil {
		return "", fmt.Errorf("printing deployment details table: %w", err)
	}
	return table, nil
}

func PrintDeploymentList(deployments []*domain.Deployment) (string, error) {
	if len(deployments) == 0 {
		return PrintMessage(Plain, "No deployments found."), nil
	}

	header := []string{
		"ID",
		"Project",
		"Region",
		"Status",
		"Created At",
		"Updated At",
	}
	var data [][]string
	for _, deployment := range deployments {
		data = append(data, []string{
			deployment.ID,
			deployment.ProjectName,
			deployment.Region,
			deployment.Status.String(),
			deployment.CreatedAt.Format("2006-01-02 15:04:05"),
			deployment.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing deployment list table: %w", err)
	}

	return table, nil
}

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	// This is a boolean flag, so we ignore the value and just mark it as set
	f.set = true
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}

// IsBoolFlag tells pflag this is a boolean flag (no argument required)
func (f *noColorFlag) IsBoolFlag() bool {
	return true
}
