package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autostack/stackd/domain"
)

func TestPrintMessage_PlainWithoutInit(t *testing.T) {
	maybeColorize = nil
	assert.Equal(t, "hello world\n", PrintMessage(Plain, "hello %s", "world"))
}

func TestPrintMessage_ColorsDisabled(t *testing.T) {
	InitColors(true)
	assert.Equal(t, "all good\n", PrintMessage(Success, "all %s", "good"))
}

func TestPrintTable(t *testing.T) {
	out, err := PrintTable([]string{"ID", "Status"}, [][]string{
		{"dep-1", "completed"},
		{"dep-2", "running"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "dep-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "dep-2")
}

func TestPrintDeploymentList_Empty(t *testing.T) {
	out, err := PrintDeploymentList(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No deployments found.")
}

func TestPrintDeploymentList(t *testing.T) {
	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	out, err := PrintDeploymentList([]*domain.Deployment{
		{
			ID:          "dep-1",
			ProjectName: "demo",
			Region:      "us-west-2",
			Status:      domain.DeploymentStatusCompleted,
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "dep-1")
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "us-west-2")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "2026-01-15 12:00:00")
}

func TestPrintDeploymentDetails(t *testing.T) {
	url := "http://demo.elb.amazonaws.com"
	state := "s3://bucket/dep-1/terraform.tfstate"
	errMsg := "Terraform apply failed"

	out, err := PrintDeploymentDetails(&domain.Deployment{
		ID:            "dep-1",
		ProjectName:   "demo",
		Region:        "us-west-2",
		Status:        domain.DeploymentStatusFailed,
		DeploymentURL: &url,
		StateLocation: &state,
		ErrorMessage:  &errMsg,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "dep-1")
	assert.Contains(t, out, url)
	assert.Contains(t, out, state)
	assert.Contains(t, out, errMsg)
}

func TestNoColorFlag(t *testing.T) {
	flag := &noColorFlag{}
	assert.False(t, flag.IsSet())
	assert.Equal(t, "false", flag.String())
	assert.Equal(t, "bool", flag.Type())
	assert.True(t, flag.IsBoolFlag())

	require.NoError(t, flag.Set("true"))
	assert.True(t, flag.IsSet())
	assert.Equal(t, "true", flag.String())
}
