package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEnvProvider implements EnvProvider for testing
type mockEnvProvider struct {
	envVars map[string]string
	homeDir string
}

func (m *mockEnvProvider) Getenv(key string) string {
	return m.envVars[key]
}

func (m *mockEnvProvider) UserHomeDir() (string, error) {
	return m.homeDir, nil
}

func TestNewConfig_Defaults(t *testing.T) {
	env := &mockEnvProvider{envVars: map[string]string{}, homeDir: "/home/test"}

	cfg, err := NewConfigWithEnv(env)
	require.NoError(t, err)

	assert.Equal(t, "/home/test/.stackd", cfg.DataDir)
	assert.Equal(t, filepath.Join("/home/test/.stackd", "workspaces"), cfg.WorkspaceDir)
	assert.Equal(t, filepath.Join("/home/test/.stackd", "stackd.db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "terraform", cfg.TerraformCommand)
	assert.Equal(t, "autostack-terraform-state", cfg.StateBucket)
	assert.Equal(t, 30*time.Minute, cfg.StepTimeout)
	assert.Equal(t, "us-west-2", cfg.DefaultRegion)
	assert.Equal(t, "127.0.0.1", cfg.HTTPHost)
	assert.Equal(t, 8002, cfg.HTTPPort)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	env := &mockEnvProvider{
		envVars: map[string]string{
			"STACKD_DATA_DIR":          "/var/lib/stackd",
			"STACKD_LOG_LEVEL":         "debug",
			"STACKD_TERRAFORM_COMMAND": "/usr/local/bin/terraform",
			"TERRAFORM_STATE_BUCKET":   "custom-state-bucket",
			"STACKD_STEP_TIMEOUT":      "10m",
			"STACKD_HTTP_PORT":         "9000",
			"STACKD_DEFAULT_REGION":    "eu-central-1",
		},
		homeDir: "/home/test",
	}

	cfg, err := NewConfigWithEnv(env)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stackd", cfg.DataDir)
	assert.Equal(t, filepath.Join("/var/lib/stackd", "workspaces"), cfg.WorkspaceDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/usr/local/bin/terraform", cfg.TerraformCommand)
	assert.Equal(t, "custom-state-bucket", cfg.StateBucket)
	assert.Equal(t, 10*time.Minute, cfg.StepTimeout)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "eu-central-1", cfg.DefaultRegion)
}

func TestNewConfig_InvalidLogLevel(t *testing.T) {
	env := &mockEnvProvider{
		envVars: map[string]string{"STACKD_LOG_LEVEL": "verbose"},
		homeDir: "/home/test",
	}

	_, err := NewConfigWithEnv(env)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewConfig_InvalidPortIgnored(t *testing.T) {
	// Non-numeric port values fall back to the default.
	env := &mockEnvProvider{
		envVars: map[string]string{"STACKD_HTTP_PORT": "not-a-port"},
		homeDir: "/home/test",
	}

	cfg, err := NewConfigWithEnv(env)
	require.NoError(t, err)
	assert.Equal(t, 8002, cfg.HTTPPort)
}

func TestNewConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "stackd.yaml")

	content := `
data_dir: /srv/stackd
log_level: warning
state_bucket: file-bucket
http_host: 0.0.0.0
http_port: 8080
step_timeout: 15m
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	cfg, err := NewConfigFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/srv/stackd", cfg.DataDir)
	assert.Equal(t, "warning", cfg.LogLevel)
	assert.Equal(t, "file-bucket", cfg.StateBucket)
	assert.Equal(t, "0.0.0.0", cfg.HTTPHost)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.StepTimeout)
}

func TestNewConfigFromFile_Missing(t *testing.T) {
	_, err := NewConfigFromFile("/nonexistent/stackd.yaml")
	assert.ErrorContains(t, err, "failed to read config file")
}
