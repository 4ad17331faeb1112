package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autostack/stackd/awsauth"
	"github.com/autostack/stackd/orchestrator"
)

func (a *API) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeploymentID      string              `json:"deployment_id"`
		ProjectName       string              `json:"project_name"`
		Region            string              `json:"region"`
		TerraformTemplate string              `json:"terraform_template"`
		AWSCredentials    awsauth.Credentials `json:"aws_credentials"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.ProjectName == "" {
		respondError(w, http.StatusBadRequest, errors.New("project_name is required"))
		return
	}
	if req.TerraformTemplate == "" {
		respondError(w, http.StatusBadRequest, errors.New("terraform_template is required"))
		return
	}
	if req.DeploymentID == "" {
		req.DeploymentID = uuid.New().String()
	}

	err := a.orch.StartDeploy(r.Context(), orchestrator.DeployRequest{
		DeploymentID: req.DeploymentID,
		ProjectName:  req.ProjectName,
		Region:       req.Region,
		Template:     req.TerraformTemplate,
		Credentials:  req.AWSCredentials,
	})
	switch {
	case errors.Is(err, orchestrator.ErrAlreadyRunning), errors.Is(err, orchestrator.ErrInvalidStatus):
		respondError(w, http.StatusConflict, err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"deployment_id": req.DeploymentID,
		"status":        "running",
	})
}

func (a *API) handleDestroy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeploymentID   string              `json:"deployment_id"`
		StateLocation  string              `json:"state_location"`
		AWSCredentials awsauth.Credentials `json:"aws_credentials"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.DeploymentID == "" {
		respondError(w, http.StatusBadRequest, errors.New("deployment_id is required"))
		return
	}

	err := a.orch.StartDestroy(r.Context(), orchestrator.DestroyRequest{
		DeploymentID:  req.DeploymentID,
		StateLocation: req.StateLocation,
		Credentials:   req.AWSCredentials,
	})
	switch {
	case errors.Is(err, orchestrator.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, orchestrator.ErrAlreadyRunning), errors.Is(err, orchestrator.ErrInvalidStatus):
		respondError(w, http.StatusConflict, err)
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]any{
		"deployment_id": req.DeploymentID,
		"status":        "destroying",
	})
}

func (a *API) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeploymentID string `json:"deployment_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.DeploymentID == "" {
		respondError(w, http.StatusBadRequest, errors.New("deployment_id is required"))
		return
	}

	cancelled, err := a.orch.Cancel(req.DeploymentID)
	switch {
	case errors.Is(err, orchestrator.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, orchestrator.ErrInvalidStatus):
		respondError(w, http.StatusConflict, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"deployment_id": req.DeploymentID,
		"cancelled":     cancelled,
	})
}

func (a *API) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := a.orch.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]deploymentView, len(deployments))
	for i, d := range deployments {
		views[i] = toView(d, false)
	}
	respondJSON(w, http.StatusOK, map[string]any{"deployments": views})
}

func (a *API) handleDeploymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deployment, err := a.orch.GetStatus(id)
	switch {
	case errors.Is(err, orchestrator.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, toView(deployment, true))
}

func (a *API) handleDeploymentOutputs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	outputs, err := a.orch.GetOutputs(r.Context(), id)
	switch {
	case errors.Is(err, orchestrator.ErrNotFound):
		respondError(w, http.StatusNotFound, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"deployment_id": id,
		"outputs":       outputs,
	})
}

func (a *API) handleValidateCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AWSCredentials awsauth.Credentials `json:"aws_credentials"`
		Region         string              `json:"region"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	identity, err := a.validator.Validate(r.Context(), req.AWSCredentials, req.Region)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]any{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"account_id": identity.AccountID,
		"user_arn":   identity.UserARN,
		"region":     identity.Region,
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := "connected"
	httpStatus := http.StatusOK

	if err := a.database.Ping(); err != nil {
		status = "degraded"
		database = "unavailable"
		httpStatus = http.StatusServiceUnavailable
	}

	respondJSON(w, httpStatus, map[string]any{
		"status":            status,
		"version":           a.version,
		"database":          database,
		"terraform_version": a.tool.Version(r.Context()),
	})
}
