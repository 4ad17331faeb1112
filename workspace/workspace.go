// Package workspace manages isolated filesystem areas for provisioning
// operations. Each operation owns exactly one directory under the workspace
// root; it is created at operation start and removed at operation end.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Manager creates and removes per-operation workspace directories.
type Manager struct {
	root string
}

func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the workspace root directory.
func (m *Manager) Root() string {
	return m.root
}

// Acquire creates a fresh, empty directory scoped to the operation id. Any
// leftover directory from a previous run with the same id is removed first so
// the operation always starts clean.
func (m *Manager) Acquire(operationID string) (string, error) {
	if operationID == "" {
		return "", fmt.Errorf("operation id cannot be empty")
	}
	if strings.ContainsAny(operationID, `/\`) || operationID == "." || operationID == ".." {
		return "", fmt.Errorf("invalid operation id: %q", operationID)
	}

	dir := filepath.Join(m.root, operationID)

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear workspace %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}

	slog.Debug("Workspace acquired", "operation_id", operationID, "dir", dir)
	return dir, nil
}

// Populate writes each file into the workspace directory.
func (m *Manager) Populate(dir string, files map[string]string) error {
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

// Release recursively removes the workspace directory. Removal failure is
// logged as a warning and not escalated: a stray workspace does not affect
// later operations because each one acquires a freshly cleared path.
func (m *Manager) Release(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("Failed to clean up workspace", "dir", dir, "error", err)
		return
	}
	slog.Debug("Workspace released", "dir", dir)
}

// Exists reports whether a workspace directory is still present for the
// operation id. Used by output re-reads after an operation has finished.
func (m *Manager) Exists(operationID string) (string, bool) {
	dir := filepath.Join(m.root, operationID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}
