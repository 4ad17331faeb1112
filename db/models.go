// Package db provides database models and utilities for stackd.
package db

import (
	"time"

	"gorm.io/gorm"
)

// DeploymentModel is the durable record for one deployment. The primary key
// is the caller-assigned deployment id, not a generated UUID, because the id
// also derives the remote state key.
type DeploymentModel struct {
	ID            string `gorm:"primaryKey;check:id <> ''"`
	ProjectName   string `gorm:"not null;check:project_name <> ''"`
	Region        string `gorm:"not null;check:region <> ''"`
	Status        string `gorm:"not null;check:status <> ''"`
	DeploymentURL *string
	StateLocation *string
	ErrorMessage  *string `gorm:"type:text"`
	Logs          string  `gorm:"type:text"`
	DeployedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (DeploymentModel) TableName() string {
	return "deployments"
}

// AllModels returns all the models that need to be migrated
func AllModels() []any {
	return []any{
		&DeploymentModel{},
	}
}

// AutoMigrateAll runs auto-migration for all application models
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
