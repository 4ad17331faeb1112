// Package web exposes the deployment lifecycle over a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/autostack/stackd/awsauth"
	"github.com/autostack/stackd/domain"
	"github.com/autostack/stackd/orchestrator"
)

// Orchestrator is the lifecycle surface the handlers call. Satisfied by
// *orchestrator.Orchestrator.
type Orchestrator interface {
	StartDeploy(ctx context.Context, req orchestrator.DeployRequest) error
	StartDestroy(ctx context.Context, req orchestrator.DestroyRequest) error
	Cancel(id string) (bool, error)
	GetStatus(id string) (*domain.Deployment, error)
	List() ([]*domain.Deployment, error)
	GetOutputs(ctx context.Context, id string) (map[string]any, error)
}

// CredentialValidator checks AWS credentials against STS.
type CredentialValidator interface {
	Validate(ctx context.Context, creds awsauth.Credentials, region string) (*awsauth.Identity, error)
}

// HealthChecker reports backing service state for the health endpoint.
type HealthChecker interface {
	Ping() error
}

// VersionReporter reports the provisioning tool version.
type VersionReporter interface {
	Version(ctx context.Context) string
}

// API wires the orchestrator and its supporting services into HTTP handlers.
type API struct {
	orch      Orchestrator
	validator CredentialValidator
	database  HealthChecker
	tool      VersionReporter
	metrics   http.Handler
	version   string
}

func NewAPI(
	orch Orchestrator,
	validator CredentialValidator,
	database HealthChecker,
	tool VersionReporter,
	metrics http.Handler,
	version string,
) *API {
	return &API{
		orch:      orch,
		validator: validator,
		database:  database,
		tool:      tool,
		metrics:   metrics,
		version:   version,
	}
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// deploymentView is the wire representation of a deployment record.
type deploymentView struct {
	DeploymentID  string     `json:"deployment_id"`
	ProjectName   string     `json:"project_name"`
	Region        string     `json:"region"`
	Status        string     `json:"status"`
	DeploymentURL *string    `json:"deployment_url,omitempty"`
	StateLocation *string    `json:"state_location,omitempty"`
	ErrorMessage  *string    `json:"error_message,omitempty"`
	Logs          string     `json:"logs,omitempty"`
	DeployedAt    *time.Time `json:"deployed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toView(d *domain.Deployment, withLogs bool) deploymentView {
	view := deploymentView{
		DeploymentID:  d.ID,
		ProjectName:   d.ProjectName,
		Region:        d.Region,
		Status:        d.Status.String(),
		DeploymentURL: d.DeploymentURL,
		StateLocation: d.StateLocation,
		ErrorMessage:  d.ErrorMessage,
		DeployedAt:    d.DeployedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if withLogs {
		view.Logs = d.Logs
	}
	return view
}
