package terraform

import "fmt"

// LockTableName is the well-known DynamoDB table used for state locking.
const LockTableName = "terraform-state-lock"

// BackendConfig describes the remote state location for one deployment.
// Building it is a pure function of deployment id and region, so destroy can
// reconstruct the exact backend a previous deploy created without the
// original template.
type BackendConfig struct {
	Bucket    string
	Key       string
	Region    string
	LockTable string
	Encrypt   bool
}

// NewBackendConfig derives the backend descriptor for a deployment. The state
// object key is namespaced by deployment id, so no two deployments share a
// state location.
func NewBackendConfig(deploymentID, region, bucket string) BackendConfig {
	return BackendConfig{
		Bucket:    bucket,
		Key:       StateKey(deploymentID),
		Region:    region,
		LockTable: LockTableName,
		Encrypt:   true,
	}
}

// StateKey returns the remote state object key for a deployment id.
func StateKey(deploymentID string) string {
	return fmt.Sprintf("%s/terraform.tfstate", deploymentID)
}

// Render returns the backend.tf content for this configuration.
func (b BackendConfig) Render() string {
	return fmt.Sprintf(`terraform {
  backend "s3" {
    bucket = %q
    key    = %q
    region = %q

    # Enable state locking
    dynamodb_table = %q
    encrypt        = %t
  }
}
`, b.Bucket, b.Key, b.Region, b.LockTable, b.Encrypt)
}

// StateURL returns the s3:// URL of the state object.
func (b BackendConfig) StateURL() string {
	return fmt.Sprintf("s3://%s/%s", b.Bucket, b.Key)
}

// DestroyConfig returns a minimal root module that lets terraform read the
// remote state and destroy its resources when the original template is no
// longer available.
func DestroyConfig(deploymentID, region string) string {
	return fmt.Sprintf(`# Minimal configuration for destroy operation.
# Allows Terraform to read the state and destroy resources without the
# original template.

terraform {
  required_version = ">= 1.0"
  required_providers {
    aws = {
      source  = "hashicorp/aws"
      version = "~> 5.0"
    }
  }
}

provider "aws" {
  region = var.aws_region
}

variable "aws_region" {
  description = "AWS region"
  type        = string
  default     = %q
}

variable "project_name" {
  description = "Project name"
  type        = string
  default     = "autostack-%s"
}

variable "deployment_id" {
  description = "Deployment ID"
  type        = string
  default     = %q
}
`, region, deploymentID, deploymentID)
}

// Tfvars returns the terraform.tfvars content for a deployment.
func Tfvars(projectName, region, deploymentID string) string {
	return fmt.Sprintf(`project_name  = %q
aws_region    = %q
deployment_id = %q
`, projectName, region, deploymentID)
}
