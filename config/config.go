// Package config provides configuration for all stackd services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvProvider abstracts environment variable access for testing
type EnvProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
}

// DefaultEnvProvider implements EnvProvider using real OS functions
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (p *DefaultEnvProvider) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// Config holds configuration for all stackd services
type Config struct {
	// Core paths
	DataDir      string `yaml:"data_dir"`
	DatabasePath string `yaml:"database_path"`
	WorkspaceDir string `yaml:"workspace_dir"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Terraform
	TerraformCommand string        `yaml:"terraform_command"`
	StateBucket      string        `yaml:"state_bucket"`
	StepTimeout      time.Duration `yaml:"-"`

	// AWS
	DefaultRegion string `yaml:"default_region"`

	// HTTP server
	HTTPHost string `yaml:"http_host"`
	HTTPPort int    `yaml:"http_port"`

	// Environment provider for testing
	env EnvProvider `yaml:"-"`
}

// NewConfig creates a configuration from defaults and STACKD_* environment
// variables.
func NewConfig() (*Config, error) {
	return NewConfigWithEnv(&DefaultEnvProvider{})
}

// NewConfigWithEnv creates a configuration with a custom environment provider
// (for testing).
func NewConfigWithEnv(env EnvProvider) (*Config, error) {
	c := &Config{env: env}

	c.setDefaults()
	c.loadFromEnv()
	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// NewConfigForCLI creates a configuration for CLI use with an optional data
// directory override taking precedence over defaults and environment.
func NewConfigForCLI(dataDir string) (*Config, error) {
	c := &Config{env: &DefaultEnvProvider{}}

	c.setDefaults()
	c.loadFromEnv()
	if dataDir != "" {
		c.DataDir = dataDir
		c.DatabasePath = ""
		c.WorkspaceDir = ""
	}
	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// NewConfigFromFile creates a configuration from a YAML file. Environment
// variables still override file values.
func NewConfigFromFile(path string) (*Config, error) {
	c := &Config{env: &DefaultEnvProvider{}}

	c.setDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		// Durations are written as strings in YAML ("30m"), which yaml.v3
		// cannot decode into time.Duration on its own.
		var timeouts struct {
			StepTimeout string `yaml:"step_timeout"`
		}
		if err := yaml.Unmarshal(data, &timeouts); err == nil && timeouts.StepTimeout != "" {
			d, err := time.ParseDuration(timeouts.StepTimeout)
			if err != nil {
				return nil, fmt.Errorf("invalid step_timeout in config file %s: %w", path, err)
			}
			c.StepTimeout = d
		}
	}

	c.loadFromEnv()
	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// setDefaults sets sensible default values
func (c *Config) setDefaults() {
	homeDir, _ := c.env.UserHomeDir()
	c.DataDir = filepath.Join(homeDir, ".stackd")
	c.LogLevel = "info"
	c.TerraformCommand = "terraform"
	c.StateBucket = "autostack-terraform-state"
	c.StepTimeout = 30 * time.Minute
	c.DefaultRegion = "us-west-2"
	c.HTTPHost = "127.0.0.1"
	c.HTTPPort = 8002
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if v := c.env.Getenv("STACKD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := c.env.Getenv("STACKD_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := c.env.Getenv("STACKD_WORKSPACE_DIR"); v != "" {
		c.WorkspaceDir = v
	}
	if v := c.env.Getenv("STACKD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := c.env.Getenv("STACKD_TERRAFORM_COMMAND"); v != "" {
		c.TerraformCommand = v
	}
	if v := c.env.Getenv("TERRAFORM_STATE_BUCKET"); v != "" {
		c.StateBucket = v
	}
	if v := c.env.Getenv("STACKD_STEP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.StepTimeout = d
		}
	}
	if v := c.env.Getenv("STACKD_DEFAULT_REGION"); v != "" {
		c.DefaultRegion = v
	}
	if v := c.env.Getenv("STACKD_HTTP_HOST"); v != "" {
		c.HTTPHost = v
	}
	if v := c.env.Getenv("STACKD_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTPPort = port
		}
	}
}

// derivePaths calculates dependent paths from the base DataDir
func (c *Config) derivePaths() {
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = filepath.Join(c.DataDir, "workspaces")
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "stackd.db")
	}
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warning": true, "error": true, "silent": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warning, error, or silent)", c.LogLevel)
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d (must be 1-65535)", c.HTTPPort)
	}

	if c.StepTimeout <= 0 {
		return fmt.Errorf("step timeout must be positive, got: %v", c.StepTimeout)
	}

	if c.TerraformCommand == "" {
		return fmt.Errorf("terraform command cannot be empty")
	}

	if c.StateBucket == "" {
		return fmt.Errorf("state bucket cannot be empty")
	}

	return nil
}
