// Package terraform drives the external terraform binary through
// init/plan/apply/destroy sequences inside a workspace directory.
package terraform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	tfjson "github.com/hashicorp/terraform-json"

	"github.com/autostack/stackd/domain"
)

// Mode selects the provisioning sequence: apply runs init, plan, apply and
// output extraction; destroy runs init and destroy.
type Mode int

const (
	ModeApply Mode = iota
	ModeDestroy
)

func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// urlOutputKeys are the well-known output names checked, in order, when
// extracting a deployment URL. This is a best-effort heuristic; a template
// with none of these outputs simply yields no URL.
var urlOutputKeys = []string{
	"load_balancer_dns",
	"alb_dns_name",
	"website_url",
	"endpoint_url",
}

// Engine invokes the terraform binary. Each step runs as a blocking
// subprocess with a bounded timeout; all output is captured and returned so
// failures are diagnosable without re-running.
type Engine struct {
	command     string
	stepTimeout time.Duration
}

func NewEngine(command string, stepTimeout time.Duration) *Engine {
	return &Engine{
		command:     command,
		stepTimeout: stepTimeout,
	}
}

// stepOutput is the captured result of one terraform invocation.
type stepOutput struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

func (s stepOutput) combined() string {
	return fmt.Sprintf("STDOUT: %s\nSTDERR: %s", s.stdout, s.stderr)
}

// Run executes the provisioning sequence for the given mode inside dir.
// Failures never surface as errors: the result always carries the captured
// logs and an error message, because the caller records both either way.
// The engine never retries; retry policy belongs to the operator.
func (e *Engine) Run(ctx context.Context, dir string, mode Mode, env []string) *domain.ProvisionResult {
	var logs strings.Builder

	step := func(name string, args ...string) (stepOutput, bool) {
		out := e.runStep(ctx, dir, env, args...)
		fmt.Fprintf(&logs, "=== terraform %s ===\n%s\n", name, out.combined())
		if out.err != nil {
			return out, false
		}
		return out, true
	}

	if out, ok := step("init", "init", "-no-color", "-input=false"); !ok {
		return failure(fmt.Sprintf("Terraform init failed: %s", stepError(out)), logs.String())
	}

	if mode == ModeDestroy {
		if out, ok := step("destroy", "destroy", "-no-color", "-input=false", "-auto-approve"); !ok {
			return failure(fmt.Sprintf("Terraform destroy failed: %s", stepError(out)), logs.String())
		}
		return &domain.ProvisionResult{Success: true, Logs: logs.String()}
	}

	if out, ok := step("plan", "plan", "-no-color", "-input=false"); !ok {
		return failure(fmt.Sprintf("Terraform plan failed: %s", stepError(out)), logs.String())
	}

	if out, ok := step("apply", "apply", "-no-color", "-input=false", "-auto-approve"); !ok {
		return failure(fmt.Sprintf("Terraform apply failed: %s", stepError(out)), logs.String())
	}

	// Output extraction is best-effort: apply already succeeded, so a failure
	// here yields empty outputs rather than failing the whole deploy.
	outputs, err := e.Outputs(ctx, dir, env)
	if err != nil {
		slog.Warn("Failed to read terraform outputs", "dir", dir, "error", err)
		outputs = map[string]any{}
	}

	return &domain.ProvisionResult{
		Success:       true,
		Logs:          logs.String(),
		Outputs:       outputs,
		DeploymentURL: ExtractDeploymentURL(outputs),
	}
}

// Outputs runs terraform output -json in dir and returns the output values.
func (e *Engine) Outputs(ctx context.Context, dir string, env []string) (map[string]any, error) {
	out := e.runStep(ctx, dir, env, "output", "-json")
	if out.err != nil {
		return nil, fmt.Errorf("terraform output failed: %w", out.err)
	}

	var parsed map[string]tfjson.StateOutput
	if err := json.Unmarshal([]byte(out.stdout), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse terraform outputs: %w", err)
	}

	values := make(map[string]any, len(parsed))
	for name, output := range parsed {
		values[name] = output.Value
	}
	return values, nil
}

// Version reports the terraform binary version for health checks.
func (e *Engine) Version(ctx context.Context) string {
	out := e.runStep(ctx, "", nil, "version", "-json")
	if out.err != nil {
		return "not installed"
	}

	var v tfjson.VersionOutput
	if err := json.Unmarshal([]byte(out.stdout), &v); err != nil || v.Version == "" {
		return "unknown"
	}
	return v.Version
}

// runStep invokes one terraform subcommand with a bounded wait. Timeout
// expiry is treated as a step failure, not a hang.
func (e *Engine) runStep(ctx context.Context, dir string, env []string, args ...string) stepOutput {
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, e.command, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Executing terraform command",
		"command", e.command,
		"args", args,
		"working_dir", dir)

	err := cmd.Run()

	out := stepOutput{
		stdout: stdout.String(),
		stderr: stderr.String(),
	}

	if stepCtx.Err() == context.DeadlineExceeded {
		out.err = fmt.Errorf("step timed out after %s", e.stepTimeout)
		out.exitCode = -1
		return out
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.exitCode = exitErr.ExitCode()
		} else {
			out.exitCode = -1
		}
		out.err = err
		slog.Error("Terraform step failed",
			"command", e.command,
			"args", args,
			"exit_code", out.exitCode,
			"error", err)
	}

	return out
}

// stepError picks the most useful error text for a failed step: stderr when
// the tool wrote any, the exec error otherwise.
func stepError(out stepOutput) string {
	if s := strings.TrimSpace(out.stderr); s != "" {
		return s
	}
	if out.err != nil {
		return out.err.Error()
	}
	return "unknown error"
}

func failure(message, logs string) *domain.ProvisionResult {
	return &domain.ProvisionResult{
		Success:      false,
		ErrorMessage: message,
		Logs:         logs,
	}
}

// ExtractDeploymentURL scans outputs for well-known URL-carrying keys and
// returns the first match as an HTTP URL, or empty when none is present.
func ExtractDeploymentURL(outputs map[string]any) string {
	for _, key := range urlOutputKeys {
		value, ok := outputs[key]
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok || s == "" {
			continue
		}
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return s
		}
		return "http://" + s
	}
	return ""
}
