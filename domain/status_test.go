package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentStatusRoundTrip(t *testing.T) {
	statuses := []DeploymentStatus{
		DeploymentStatusPending,
		DeploymentStatusRunning,
		DeploymentStatusCompleted,
		DeploymentStatusFailed,
		DeploymentStatusCancelled,
		DeploymentStatusDestroying,
		DeploymentStatusDestroyed,
		DeploymentStatusDestroyFailed,
	}

	for _, status := range statuses {
		parsed, err := ParseDeploymentStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}
}

func TestParseDeploymentStatus_Invalid(t *testing.T) {
	status, err := ParseDeploymentStatus("exploded")
	assert.Error(t, err)
	assert.Equal(t, DeploymentStatusUnknown, status)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    DeploymentStatus
		to      DeploymentStatus
		allowed bool
	}{
		{"pending to running", DeploymentStatusPending, DeploymentStatusRunning, true},
		{"pending to cancelled", DeploymentStatusPending, DeploymentStatusCancelled, true},
		{"running to completed", DeploymentStatusRunning, DeploymentStatusCompleted, true},
		{"running to failed", DeploymentStatusRunning, DeploymentStatusFailed, true},
		{"running to cancelled", DeploymentStatusRunning, DeploymentStatusCancelled, true},
		{"cancelled to completed rejected", DeploymentStatusCancelled, DeploymentStatusCompleted, false},
		{"cancelled to failed rejected", DeploymentStatusCancelled, DeploymentStatusFailed, false},
		{"cancelled to destroying", DeploymentStatusCancelled, DeploymentStatusDestroying, true},
		{"completed to destroying", DeploymentStatusCompleted, DeploymentStatusDestroying, true},
		{"completed to running rejected", DeploymentStatusCompleted, DeploymentStatusRunning, false},
		{"destroying to destroyed", DeploymentStatusDestroying, DeploymentStatusDestroyed, true},
		{"destroying to destroy_failed", DeploymentStatusDestroying, DeploymentStatusDestroyFailed, true},
		{"destroy_failed retry", DeploymentStatusDestroyFailed, DeploymentStatusDestroying, true},
		{"failed redeploy", DeploymentStatusFailed, DeploymentStatusRunning, true},
		{"cancelled redeploy", DeploymentStatusCancelled, DeploymentStatusRunning, true},
		{"destroyed redeploy", DeploymentStatusDestroyed, DeploymentStatusRunning, true},
		{"destroyed to destroying rejected", DeploymentStatusDestroyed, DeploymentStatusDestroying, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsCancellable(t *testing.T) {
	assert.True(t, DeploymentStatusPending.IsCancellable())
	assert.True(t, DeploymentStatusRunning.IsCancellable())
	assert.False(t, DeploymentStatusCompleted.IsCancellable())
	assert.False(t, DeploymentStatusCancelled.IsCancellable())
	assert.False(t, DeploymentStatusDestroying.IsCancellable())
}
