package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestInitDatabase_InMemory(t *testing.T) {
	database, err := InitDatabase(DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NotNil(t, database)

	require.NoError(t, AutoMigrateAll(database))

	assert.True(t, database.Migrator().HasTable(&DeploymentModel{}))
}

func TestInitDB_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stackd.db")

	database, err := InitDB(path)
	require.NoError(t, err)

	assert.True(t, database.Migrator().HasTable("deployments"))
	assert.FileExists(t, path)
}

func TestDeploymentModel_Persistence(t *testing.T) {
	database, err := InitDatabase(DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, AutoMigrateAll(database))

	m := &DeploymentModel{
		ID:          "dep-1",
		ProjectName: "demo",
		Region:      "us-west-2",
		Status:      "pending",
	}
	require.NoError(t, database.Create(m).Error)

	var loaded DeploymentModel
	require.NoError(t, database.First(&loaded, "id = ?", "dep-1").Error)
	assert.Equal(t, "demo", loaded.ProjectName)
	assert.Equal(t, "pending", loaded.Status)
	assert.False(t, loaded.CreatedAt.IsZero())
}
