// Package awsauth handles AWS credential plumbing for provisioning
// operations: turning caller-supplied credentials into the environment the
// terraform process runs with, and validating them against STS.
package awsauth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Credentials are caller-supplied AWS credentials for one deployment. The
// orchestrator treats them as opaque: they are passed to the terraform
// process as environment variables, never inspected.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == ""
}

// Environ returns the AWS environment variables for a provisioning process.
// Returns nil when no credentials were supplied, so the process inherits the
// ambient environment (instance profile, shared config).
func (c Credentials) Environ(region string) []string {
	if c.IsZero() {
		return nil
	}

	env := []string{
		"AWS_ACCESS_KEY_ID=" + c.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY=" + c.SecretAccessKey,
		"AWS_DEFAULT_REGION=" + region,
		"AWS_REGION=" + region,
	}
	if c.SessionToken != "" {
		env = append(env, "AWS_SESSION_TOKEN="+c.SessionToken)
	}
	return env
}

// Identity describes the AWS principal behind a set of credentials.
type Identity struct {
	AccountID string `json:"accountId"`
	UserARN   string `json:"userArn"`
	Region    string `json:"region"`
}

// STSClient is the subset of the STS API used for credential validation.
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Validator checks credentials against AWS STS.
type Validator struct {
	// newClient builds an STS client for the given credentials; replaced in
	// tests.
	newClient func(ctx context.Context, creds Credentials, region string) (STSClient, error)
}

func NewValidator() *Validator {
	return &Validator{newClient: newSTSClient}
}

// NewValidatorWithClient creates a validator with a fixed client (for testing).
func NewValidatorWithClient(client STSClient) *Validator {
	return &Validator{
		newClient: func(context.Context, Credentials, string) (STSClient, error) {
			return client, nil
		},
	}
}

// Validate performs an STS GetCallerIdentity call with the supplied
// credentials and returns the resolved identity.
func (v *Validator) Validate(ctx context.Context, creds Credentials, region string) (*Identity, error) {
	if creds.IsZero() {
		return nil, fmt.Errorf("no credentials provided")
	}

	client, err := v.newClient(ctx, creds, region)
	if err != nil {
		return nil, fmt.Errorf("failed to configure STS client: %w", err)
	}

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("credential validation failed: %w", err)
	}

	return &Identity{
		AccountID: aws.ToString(out.Account),
		UserARN:   aws.ToString(out.Arn),
		Region:    region,
	}, nil
}

func newSTSClient(ctx context.Context, creds Credentials, region string) (STSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		),
	)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}
