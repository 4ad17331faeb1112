// Package repository provides the data access layer for deployments.
package repository

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/autostack/stackd/db"
	"github.com/autostack/stackd/domain"
)

// ErrNotFound is returned when no deployment exists for the given id.
var ErrNotFound = errors.New("deployment not found")

// DeploymentRepository is the Deployment Store: the durable record of
// deployment status, URLs, error text, and logs.
type DeploymentRepository interface {
	FindByID(id string) (*domain.Deployment, error)
	Create(deployment *domain.Deployment) error
	// Update persists all mutable fields of the deployment record.
	Update(deployment *domain.Deployment) error
	List() ([]*domain.Deployment, error)
	Delete(id string) error
	// Ping verifies database connectivity for health reporting.
	Ping() error
}

type deploymentRepository struct {
	db     *gorm.DB
	mapper *DeploymentMapper
}

func NewDeploymentRepository(database *gorm.DB) DeploymentRepository {
	return &deploymentRepository{
		db:     database,
		mapper: NewDeploymentMapper(),
	}
}

func (r *deploymentRepository) FindByID(id string) (*domain.Deployment, error) {
	var m db.DeploymentModel
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "find_deployment",
			"deployment_id", id,
			"error", err)
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *deploymentRepository) Create(deployment *domain.Deployment) error {
	m := r.mapper.ToModel(deployment)
	if err := r.db.Create(m).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "create_deployment",
			"deployment_id", deployment.ID,
			"error", err)
		return err
	}
	return nil
}

func (r *deploymentRepository) Update(deployment *domain.Deployment) error {
	m := r.mapper.ToModel(deployment)

	// Select("*") so that clearing a field (nil pointer, empty logs) is
	// persisted; CreatedAt never changes after creation.
	res := r.db.Model(&db.DeploymentModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("created_at").
		Updates(m)
	if res.Error != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "update_deployment",
			"deployment_id", deployment.ID,
			"error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deploymentRepository) List() ([]*domain.Deployment, error) {
	var models []db.DeploymentModel
	if err := r.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	deployments := make([]*domain.Deployment, len(models))
	for i, m := range models {
		deployments[i] = r.mapper.ToDomain(&m)
	}
	return deployments, nil
}

func (r *deploymentRepository) Delete(id string) error {
	err := r.db.Delete(&db.DeploymentModel{}, "id = ?", id).Error
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "repository",
			"operation", "delete_deployment",
			"deployment_id", id,
			"error", err)
	}
	return err
}

func (r *deploymentRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
