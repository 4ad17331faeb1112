package repository

import (
	"log/slog"

	"github.com/autostack/stackd/db"
	"github.com/autostack/stackd/domain"
)

type DeploymentMapper struct{}

func NewDeploymentMapper() *DeploymentMapper {
	return &DeploymentMapper{}
}

func (m *DeploymentMapper) ToDomain(d *db.DeploymentModel) *domain.Deployment {
	status, err := domain.ParseDeploymentStatus(d.Status)
	if err != nil {
		// A record with an unparseable status is still usable; surface it as
		// unknown rather than failing the read.
		slog.Error("Invalid deployment status in database",
			"deployment_id", d.ID,
			"status", d.Status,
			"error", err)
		status = domain.DeploymentStatusUnknown
	}

	return &domain.Deployment{
		ID:            d.ID,
		ProjectName:   d.ProjectName,
		Region:        d.Region,
		Status:        status,
		DeploymentURL: d.DeploymentURL,
		StateLocation: d.StateLocation,
		ErrorMessage:  d.ErrorMessage,
		Logs:          d.Logs,
		DeployedAt:    d.DeployedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (m *DeploymentMapper) ToModel(d *domain.Deployment) *db.DeploymentModel {
	return &db.DeploymentModel{
		ID:            d.ID,
		ProjectName:   d.ProjectName,
		Region:        d.Region,
		Status:        d.Status.String(),
		DeploymentURL: d.DeploymentURL,
		StateLocation: d.StateLocation,
		ErrorMessage:  d.ErrorMessage,
		Logs:          d.Logs,
		DeployedAt:    d.DeployedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
