// Package domain provides core domain types for stackd.
package domain

import "time"

// Deployment is the durable lifecycle record for one provisioned stack.
// The ID is assigned by the caller before orchestration begins and doubles
// as the remote state key prefix, so it must never change.
type Deployment struct {
	ID            string
	ProjectName   string
	Region        string
	Status        DeploymentStatus
	DeploymentURL *string
	StateLocation *string
	ErrorMessage  *string
	Logs          string
	DeployedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProvisionResult captures the outcome of a single provisioning operation.
type ProvisionResult struct {
	Success       bool
	ErrorMessage  string
	Logs          string
	Outputs       map[string]any
	DeploymentURL string
}
