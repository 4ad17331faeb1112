// Package app provides the main application context for stackd, managing the
// database and services.
package app

import (
	"os"

	"gorm.io/gorm"

	"github.com/autostack/stackd/awsauth"
	"github.com/autostack/stackd/config"
	"github.com/autostack/stackd/db"
	"github.com/autostack/stackd/orchestrator"
	"github.com/autostack/stackd/registry"
	"github.com/autostack/stackd/repository"
	"github.com/autostack/stackd/telemetry"
	"github.com/autostack/stackd/terraform"
	"github.com/autostack/stackd/workspace"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	database       *gorm.DB
	deploymentRepo repository.DeploymentRepository
	engine         *terraform.Engine
	orchService    *orchestrator.Orchestrator
	validator      *awsauth.Validator
	metrics        *telemetry.Metrics
	appConfig      *config.Config
)

// InitializeWithConfig initializes the app with a pre-configured Config
func InitializeWithConfig(cfg *config.Config) error {
	var err error

	appConfig = cfg

	// Ensure required directories exist
	if err := os.MkdirAll(appConfig.DataDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(appConfig.WorkspaceDir, 0755); err != nil {
		return err
	}

	database, err = db.InitDB(appConfig.DatabasePath)
	if err != nil {
		return err
	}

	deploymentRepo = repository.NewDeploymentRepository(database)
	engine = terraform.NewEngine(appConfig.TerraformCommand, appConfig.StepTimeout)
	validator = awsauth.NewValidator()
	metrics = telemetry.NewMetrics()

	orchService = orchestrator.New(
		deploymentRepo,
		workspace.NewManager(appConfig.WorkspaceDir),
		engine,
		registry.NewRegistry(),
		metrics,
		appConfig,
	)
	return nil
}

func GetOrchestrator() *orchestrator.Orchestrator {
	return orchService
}

func GetDeploymentRepository() repository.DeploymentRepository {
	return deploymentRepo
}

func GetEngine() *terraform.Engine {
	return engine
}

func GetValidator() *awsauth.Validator {
	return validator
}

func GetMetrics() *telemetry.Metrics {
	return metrics
}

func GetConfig() *config.Config {
	return appConfig
}
