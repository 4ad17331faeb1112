// Package registry tracks in-flight provisioning operations so they can be
// found and cancelled. It enforces at most one active operation per
// deployment id.
package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// OperationMode identifies what an in-flight operation is doing.
type OperationMode string

const (
	OperationDeploy  OperationMode = "deploy"
	OperationDestroy OperationMode = "destroy"
)

// Operation is the transient handle for one running provisioning operation.
// Cancellation is cooperative: marking the handle cancelled does not stop the
// external tool, it only tells the orchestrator to discard the result.
type Operation struct {
	DeploymentID string
	Mode         OperationMode

	cancelled atomic.Bool
}

func NewOperation(deploymentID string, mode OperationMode) *Operation {
	return &Operation{
		DeploymentID: deploymentID,
		Mode:         mode,
	}
}

// Cancel marks the operation cancelled.
func (o *Operation) Cancel() {
	o.cancelled.Store(true)
}

// Cancelled reports whether the operation has been cancelled.
func (o *Operation) Cancelled() bool {
	return o.cancelled.Load()
}

// Registry is an in-memory map from deployment id to its running operation.
// It is the only mutable state shared across deployments and is guarded by a
// mutex; operations on different ids never block each other beyond map
// access.
type Registry struct {
	mu         sync.Mutex
	operations map[string]*Operation
}

func NewRegistry() *Registry {
	return &Registry{
		operations: make(map[string]*Operation),
	}
}

// Register records op as the active operation for its deployment id. It
// returns false when another operation is already registered for the id,
// enforcing single-flight per deployment.
func (r *Registry) Register(op *Operation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operations[op.DeploymentID]; exists {
		return false
	}
	r.operations[op.DeploymentID] = op

	slog.Debug("Operation registered",
		"deployment_id", op.DeploymentID,
		"mode", op.Mode,
		"active_operations", len(r.operations))
	return true
}

// Unregister removes the registry entry for id. Safe to call when no entry
// exists.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.operations, id)
}

// Cancel marks the operation for id cancelled and removes its entry. Returns
// false when no operation is running for the id. The underlying provisioning
// step, if any, keeps running; its result will be discarded.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, exists := r.operations[id]
	if !exists {
		return false
	}

	op.Cancel()
	delete(r.operations, id)

	slog.Info("Operation cancelled", "deployment_id", id, "mode", op.Mode)
	return true
}

// Get returns the active operation for id, if any.
func (r *Registry) Get(id string) (*Operation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, exists := r.operations[id]
	return op, exists
}

// Len returns the number of active operations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.operations)
}
