package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/autostack/stackd/db"
	"github.com/autostack/stackd/domain"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	database, err := db.InitDatabase(db.DBConfig{
		Path:     ":memory:",
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))
	return database
}

func newTestDeployment(id string) *domain.Deployment {
	return &domain.Deployment{
		ID:          id,
		ProjectName: "demo",
		Region:      "us-west-2",
		Status:      domain.DeploymentStatusPending,
	}
}

func TestDeploymentRepository_CreateAndFind(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	require.NoError(t, repo.Create(newTestDeployment("d1")))

	found, err := repo.FindByID("d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", found.ID)
	assert.Equal(t, "demo", found.ProjectName)
	assert.Equal(t, domain.DeploymentStatusPending, found.Status)
	assert.Nil(t, found.DeploymentURL)
}

func TestDeploymentRepository_FindByID_NotFound(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	_, err := repo.FindByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeploymentRepository_Update(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	deployment := newTestDeployment("d1")
	require.NoError(t, repo.Create(deployment))

	url := "http://x.elb.amazonaws.com"
	stateLocation := "s3://bucket/d1/terraform.tfstate"
	deployedAt := time.Now().UTC().Truncate(time.Second)

	deployment.Status = domain.DeploymentStatusCompleted
	deployment.DeploymentURL = &url
	deployment.StateLocation = &stateLocation
	deployment.Logs = "STDOUT: applied"
	deployment.DeployedAt = &deployedAt

	require.NoError(t, repo.Update(deployment))

	found, err := repo.FindByID("d1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeploymentStatusCompleted, found.Status)
	require.NotNil(t, found.DeploymentURL)
	assert.Equal(t, url, *found.DeploymentURL)
	require.NotNil(t, found.StateLocation)
	assert.Equal(t, stateLocation, *found.StateLocation)
	assert.Equal(t, "STDOUT: applied", found.Logs)
	require.NotNil(t, found.DeployedAt)
}

func TestDeploymentRepository_Update_NotFound(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	err := repo.Update(newTestDeployment("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeploymentRepository_List(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	require.NoError(t, repo.Create(newTestDeployment("d1")))
	require.NoError(t, repo.Create(newTestDeployment("d2")))

	deployments, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, deployments, 2)
}

func TestDeploymentRepository_Delete(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))

	require.NoError(t, repo.Create(newTestDeployment("d1")))
	require.NoError(t, repo.Delete("d1"))

	_, err := repo.FindByID("d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeploymentRepository_Ping(t *testing.T) {
	repo := NewDeploymentRepository(setupTestDB(t))
	assert.NoError(t, repo.Ping())
}

func TestDeploymentMapper_InvalidStatus(t *testing.T) {
	mapper := NewDeploymentMapper()

	d := mapper.ToDomain(&db.DeploymentModel{
		ID:          "d1",
		ProjectName: "demo",
		Region:      "us-west-2",
		Status:      "bogus",
	})
	assert.Equal(t, domain.DeploymentStatusUnknown, d.Status)
}
