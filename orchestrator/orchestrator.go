// Package orchestrator sequences deployment lifecycle operations: it wires
// the workspace manager, backend configuration, provisioning engine, store
// and operation registry into deploy, destroy and cancel flows.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/autostack/stackd/awsauth"
	"github.com/autostack/stackd/config"
	"github.com/autostack/stackd/domain"
	"github.com/autostack/stackd/registry"
	"github.com/autostack/stackd/repository"
	"github.com/autostack/stackd/telemetry"
	"github.com/autostack/stackd/terraform"
	"github.com/autostack/stackd/workspace"
)

var (
	// ErrAlreadyRunning is returned when an operation is requested for a
	// deployment that already has one in flight.
	ErrAlreadyRunning = errors.New("operation already running for deployment")
	// ErrNotFound is returned when the deployment record does not exist.
	ErrNotFound = errors.New("deployment not found")
	// ErrInvalidStatus is returned when the deployment's current status does
	// not permit the requested operation.
	ErrInvalidStatus = errors.New("operation not allowed in current deployment status")
)

// Provisioner is the engine surface the orchestrator drives. Satisfied by
// *terraform.Engine.
type Provisioner interface {
	Run(ctx context.Context, dir string, mode terraform.Mode, env []string) *domain.ProvisionResult
	Outputs(ctx context.Context, dir string, env []string) (map[string]any, error)
}

// DeployRequest describes a provisioning run for one deployment id.
type DeployRequest struct {
	DeploymentID string
	ProjectName  string
	Region       string
	Template     string
	Credentials  awsauth.Credentials
}

// DestroyRequest describes a teardown run for an existing deployment.
// StateLocation is optional: the backend is always reconstructed from the
// deployment id and region, and a supplied location is only cross-checked.
type DestroyRequest struct {
	DeploymentID  string
	StateLocation string
	Credentials   awsauth.Credentials
}

// Orchestrator coordinates the full lifecycle of deployments. Start methods
// validate, register and persist synchronously, then hand the long-running
// terraform work to a background goroutine so callers get an immediate
// accepted/rejected answer.
type Orchestrator struct {
	store      repository.DeploymentRepository
	workspaces *workspace.Manager
	engine     Provisioner
	registry   *registry.Registry
	metrics    *telemetry.Metrics
	config     *config.Config

	// wg counts in-flight background operations so shutdown and tests can
	// wait for them to drain.
	wg sync.WaitGroup
}

func New(
	store repository.DeploymentRepository,
	workspaces *workspace.Manager,
	engine Provisioner,
	reg *registry.Registry,
	metrics *telemetry.Metrics,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		workspaces: workspaces,
		engine:     engine,
		registry:   reg,
		metrics:    metrics,
		config:     cfg,
	}
}

// StartDeploy begins provisioning for the request. It returns once the
// operation is registered and the deployment record is in running state; the
// terraform sequence itself runs in the background. Duplicate requests for an
// id with an operation in flight return ErrAlreadyRunning.
func (o *Orchestrator) StartDeploy(ctx context.Context, req DeployRequest) error {
	if req.DeploymentID == "" {
		return fmt.Errorf("deployment id is required")
	}
	if req.Template == "" {
		return fmt.Errorf("terraform template is required")
	}
	if req.ProjectName == "" {
		return fmt.Errorf("project name is required")
	}
	if req.Region == "" {
		req.Region = o.config.DefaultRegion
	}

	op := registry.NewOperation(req.DeploymentID, registry.OperationDeploy)
	if !o.registry.Register(op) {
		return ErrAlreadyRunning
	}

	if err := o.beginRecord(req); err != nil {
		o.registry.Unregister(req.DeploymentID)
		return err
	}

	o.metrics.OperationStarted(string(registry.OperationDeploy))
	o.wg.Add(1)
	go o.executeDeploy(op, req)

	slog.Info("Deployment started",
		"deployment_id", req.DeploymentID,
		"project_name", req.ProjectName,
		"region", req.Region)
	return nil
}

// beginRecord creates or reuses the durable record for the deployment and
// moves it to running. Re-running a deploy is only allowed from states the
// status machine accepts, so a completed stack must be destroyed first.
func (o *Orchestrator) beginRecord(req DeployRequest) error {
	deployment, err := o.store.FindByID(req.DeploymentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		deployment = &domain.Deployment{
			ID:          req.DeploymentID,
			ProjectName: req.ProjectName,
			Region:      req.Region,
			Status:      domain.DeploymentStatusPending,
		}
		if err := o.store.Create(deployment); err != nil {
			return fmt.Errorf("failed to create deployment record: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load deployment record: %w", err)
	default:
		if !deployment.Status.CanTransitionTo(domain.DeploymentStatusRunning) {
			return fmt.Errorf("%w: cannot deploy from status %s", ErrInvalidStatus, deployment.Status)
		}
	}

	deployment.ProjectName = req.ProjectName
	deployment.Region = req.Region
	deployment.Status = domain.DeploymentStatusRunning
	deployment.ErrorMessage = nil
	deployment.DeploymentURL = nil
	deployment.DeployedAt = nil
	deployment.Logs = ""
	if err := o.store.Update(deployment); err != nil {
		return fmt.Errorf("failed to update deployment record: %w", err)
	}
	return nil
}

func (o *Orchestrator) executeDeploy(op *registry.Operation, req DeployRequest) {
	start := time.Now()
	defer o.wg.Done()
	defer o.registry.Unregister(req.DeploymentID)

	// The operation outlives the originating HTTP request, so it runs under
	// its own context. Cancellation is cooperative via the registry handle.
	ctx := context.Background()

	dir, err := o.workspaces.Acquire(req.DeploymentID)
	if err != nil {
		o.finish(op, start, domain.DeploymentStatusFailed, failedResult(err))
		return
	}
	defer o.workspaces.Release(dir)

	backend := terraform.NewBackendConfig(req.DeploymentID, req.Region, o.config.StateBucket)
	files := map[string]string{
		"main.tf":          req.Template,
		"backend.tf":       backend.Render(),
		"terraform.tfvars": terraform.Tfvars(req.ProjectName, req.Region, req.DeploymentID),
	}
	if err := o.workspaces.Populate(dir, files); err != nil {
		o.finish(op, start, domain.DeploymentStatusFailed, failedResult(err))
		return
	}

	result := o.engine.Run(ctx, dir, terraform.ModeApply, req.Credentials.Environ(req.Region))

	status := domain.DeploymentStatusFailed
	if result.Success {
		status = domain.DeploymentStatusCompleted
	}
	o.finish(op, start, status, result, func(d *domain.Deployment) {
		if result.Success {
			now := time.Now()
			d.DeployedAt = &now
			stateURL := backend.StateURL()
			d.StateLocation = &stateURL
			if result.DeploymentURL != "" {
				url := result.DeploymentURL
				d.DeploymentURL = &url
			}
		}
	})
}

// StartDestroy begins teardown for an existing deployment. The destroy
// workspace is separate from the deploy workspace, so reading outputs of a
// finished deploy and destroying it never collide on disk.
func (o *Orchestrator) StartDestroy(ctx context.Context, req DestroyRequest) error {
	if req.DeploymentID == "" {
		return fmt.Errorf("deployment id is required")
	}

	deployment, err := o.store.FindByID(req.DeploymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load deployment record: %w", err)
	}

	op := registry.NewOperation(req.DeploymentID, registry.OperationDestroy)
	if !o.registry.Register(op) {
		return ErrAlreadyRunning
	}

	if !deployment.Status.CanTransitionTo(domain.DeploymentStatusDestroying) {
		o.registry.Unregister(req.DeploymentID)
		return fmt.Errorf("%w: cannot destroy from status %s", ErrInvalidStatus, deployment.Status)
	}

	deployment.Status = domain.DeploymentStatusDestroying
	deployment.ErrorMessage = nil
	if err := o.store.Update(deployment); err != nil {
		o.registry.Unregister(req.DeploymentID)
		return fmt.Errorf("failed to update deployment record: %w", err)
	}

	o.metrics.OperationStarted(string(registry.OperationDestroy))
	o.wg.Add(1)
	go o.executeDestroy(op, req, deployment.Region)

	slog.Info("Destroy started", "deployment_id", req.DeploymentID, "region", deployment.Region)
	return nil
}

func (o *Orchestrator) executeDestroy(op *registry.Operation, req DestroyRequest, region string) {
	start := time.Now()
	defer o.wg.Done()
	defer o.registry.Unregister(req.DeploymentID)

	ctx := context.Background()

	dir, err := o.workspaces.Acquire(req.DeploymentID + "-destroy")
	if err != nil {
		o.finish(op, start, domain.DeploymentStatusDestroyFailed, failedResult(err))
		return
	}
	defer o.workspaces.Release(dir)

	// The original template is not needed: the backend location is a pure
	// function of deployment id and region, and destroy works from state.
	backend := terraform.NewBackendConfig(req.DeploymentID, region, o.config.StateBucket)
	if req.StateLocation != "" && req.StateLocation != backend.StateURL() {
		slog.Warn("Supplied state location differs from derived location",
			"deployment_id", req.DeploymentID,
			"supplied", req.StateLocation,
			"derived", backend.StateURL())
	}
	files := map[string]string{
		"main.tf":    terraform.DestroyConfig(req.DeploymentID, region),
		"backend.tf": backend.Render(),
	}
	if err := o.workspaces.Populate(dir, files); err != nil {
		o.finish(op, start, domain.DeploymentStatusDestroyFailed, failedResult(err))
		return
	}

	result := o.engine.Run(ctx, dir, terraform.ModeDestroy, req.Credentials.Environ(region))

	status := domain.DeploymentStatusDestroyFailed
	if result.Success {
		status = domain.DeploymentStatusDestroyed
	}
	o.finish(op, start, status, result, func(d *domain.Deployment) {
		if result.Success {
			d.DeploymentURL = nil
			d.StateLocation = nil
			d.DeployedAt = nil
		}
	})
}

// Cancel requests cancellation of the in-flight operation for id. It returns
// whether an operation was actually cancelled. Cancellation is cooperative:
// the running terraform step is not interrupted, but its result will be
// discarded and the deployment stays cancelled.
func (o *Orchestrator) Cancel(id string) (bool, error) {
	deployment, err := o.store.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to load deployment record: %w", err)
	}

	if !deployment.Status.IsCancellable() {
		return false, fmt.Errorf("%w: cannot cancel deployment in status %s", ErrInvalidStatus, deployment.Status)
	}

	if !o.registry.Cancel(id) {
		// Status says cancellable but nothing is in flight, e.g. after a
		// crash left a stale running record. Mark it cancelled anyway so the
		// record converges.
		slog.Warn("No active operation for cancellable deployment", "deployment_id", id)
	}

	deployment.Status = domain.DeploymentStatusCancelled
	if err := o.store.Update(deployment); err != nil {
		return false, fmt.Errorf("failed to update deployment record: %w", err)
	}

	slog.Info("Deployment cancelled", "deployment_id", id)
	return true, nil
}

// GetStatus returns the durable record for id.
func (o *Orchestrator) GetStatus(id string) (*domain.Deployment, error) {
	deployment, err := o.store.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return deployment, err
}

// List returns all deployment records.
func (o *Orchestrator) List() ([]*domain.Deployment, error) {
	return o.store.List()
}

// GetOutputs re-reads terraform outputs from the deploy workspace. The
// workspace only exists while an operation is in flight or has just finished
// without cleanup, so a missing workspace yields an empty map, not an error.
func (o *Orchestrator) GetOutputs(ctx context.Context, id string) (map[string]any, error) {
	if _, err := o.GetStatus(id); err != nil {
		return nil, err
	}

	dir, ok := o.workspaces.Exists(id)
	if !ok {
		return map[string]any{}, nil
	}

	outputs, err := o.engine.Outputs(ctx, dir, nil)
	if err != nil {
		slog.Warn("Failed to read outputs", "deployment_id", id, "error", err)
		return map[string]any{}, nil
	}
	return outputs, nil
}

// Wait blocks until all background operations have finished. Used by server
// shutdown and tests.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// finish records the terminal state of an operation. A transition is skipped
// when the operation was cancelled or when the stored status rejects it, so
// a late result never overwrites a cancel.
func (o *Orchestrator) finish(
	op *registry.Operation,
	start time.Time,
	status domain.DeploymentStatus,
	result *domain.ProvisionResult,
	mutate ...func(*domain.Deployment),
) {
	recorded := status

	if op.Cancelled() {
		slog.Info("Discarding result of cancelled operation",
			"deployment_id", op.DeploymentID,
			"mode", op.Mode,
			"result_status", status)
		recorded = domain.DeploymentStatusCancelled
	} else {
		deployment, err := o.store.FindByID(op.DeploymentID)
		if err != nil {
			slog.Error("Failed to load deployment for status update",
				"deployment_id", op.DeploymentID, "error", err)
		} else if !deployment.Status.CanTransitionTo(status) {
			slog.Warn("Discarding status transition",
				"deployment_id", op.DeploymentID,
				"current_status", deployment.Status,
				"attempted_status", status)
			recorded = deployment.Status
		} else {
			deployment.Status = status
			deployment.Logs = result.Logs
			if result.ErrorMessage != "" {
				msg := result.ErrorMessage
				deployment.ErrorMessage = &msg
			} else {
				deployment.ErrorMessage = nil
			}
			for _, fn := range mutate {
				fn(deployment)
			}
			if err := o.store.Update(deployment); err != nil {
				slog.Error("Failed to persist deployment status",
					"deployment_id", op.DeploymentID,
					"status", status,
					"error", err)
			}
		}
	}

	o.metrics.OperationFinished(string(op.Mode), recorded.String(), time.Since(start))

	slog.Info("Operation finished",
		"deployment_id", op.DeploymentID,
		"mode", op.Mode,
		"status", recorded,
		"duration", time.Since(start).Round(time.Millisecond))
}

func failedResult(err error) *domain.ProvisionResult {
	return &domain.ProvisionResult{
		Success:      false,
		ErrorMessage: err.Error(),
	}
}
