package domain

import "fmt"

// DeploymentStatus represents the lifecycle state of a deployment
type DeploymentStatus int

const (
	DeploymentStatusUnknown DeploymentStatus = iota
	DeploymentStatusPending
	DeploymentStatusRunning
	DeploymentStatusCompleted
	DeploymentStatusFailed
	DeploymentStatusCancelled
	DeploymentStatusDestroying
	DeploymentStatusDestroyed
	DeploymentStatusDestroyFailed
)

func (s DeploymentStatus) String() string {
	switch s {
	case DeploymentStatusPending:
		return "pending"
	case DeploymentStatusRunning:
		return "running"
	case DeploymentStatusCompleted:
		return "completed"
	case DeploymentStatusFailed:
		return "failed"
	case DeploymentStatusCancelled:
		return "cancelled"
	case DeploymentStatusDestroying:
		return "destroying"
	case DeploymentStatusDestroyed:
		return "destroyed"
	case DeploymentStatusDestroyFailed:
		return "destroy_failed"
	case DeploymentStatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

func ParseDeploymentStatus(s string) (DeploymentStatus, error) {
	switch s {
	case "pending":
		return DeploymentStatusPending, nil
	case "running":
		return DeploymentStatusRunning, nil
	case "completed":
		return DeploymentStatusCompleted, nil
	case "failed":
		return DeploymentStatusFailed, nil
	case "cancelled":
		return DeploymentStatusCancelled, nil
	case "destroying":
		return DeploymentStatusDestroying, nil
	case "destroyed":
		return DeploymentStatusDestroyed, nil
	case "destroy_failed":
		return DeploymentStatusDestroyFailed, nil
	case "unknown":
		return DeploymentStatusUnknown, nil
	default:
		return DeploymentStatusUnknown, fmt.Errorf("invalid deployment status: %q", s)
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Cancellation is sticky: a late completed/failed arriving after cancel must
// not overwrite the cancelled status, so those transitions are rejected here.
func (s DeploymentStatus) CanTransitionTo(next DeploymentStatus) bool {
	switch s {
	case DeploymentStatusUnknown:
		// Fresh record with no prior history.
		return next == DeploymentStatusPending || next == DeploymentStatusRunning
	case DeploymentStatusPending:
		return next == DeploymentStatusRunning ||
			next == DeploymentStatusFailed ||
			next == DeploymentStatusCancelled
	case DeploymentStatusRunning:
		return next == DeploymentStatusCompleted ||
			next == DeploymentStatusFailed ||
			next == DeploymentStatusCancelled
	case DeploymentStatusCompleted:
		return next == DeploymentStatusDestroying
	case DeploymentStatusFailed, DeploymentStatusCancelled:
		// A failed or cancelled apply may have partially created resources,
		// so destroy is allowed; a retry deploy re-enters running.
		return next == DeploymentStatusDestroying || next == DeploymentStatusRunning
	case DeploymentStatusDestroying:
		return next == DeploymentStatusDestroyed || next == DeploymentStatusDestroyFailed
	case DeploymentStatusDestroyFailed:
		// Destroy can be retried.
		return next == DeploymentStatusDestroying
	case DeploymentStatusDestroyed:
		// The id can be reused for a fresh deploy once its stack is gone.
		return next == DeploymentStatusRunning
	default:
		return false
	}
}

// IsCancellable reports whether a deployment in this state may be cancelled.
func (s DeploymentStatus) IsCancellable() bool {
	return s == DeploymentStatusPending || s == DeploymentStatusRunning
}
