package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_CreatesFreshDirectory(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("d1")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(m.Root(), "d1"), dir)
}

func TestAcquire_ClearsLeftoverWorkspace(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("d1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.tf"), []byte("old"), 0o644))

	dir, err = m.Acquire("d1")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAcquire_InvalidOperationID(t *testing.T) {
	m := NewManager(t.TempDir())

	_, err := m.Acquire("")
	assert.Error(t, err)

	_, err = m.Acquire("../escape")
	assert.Error(t, err)
}

func TestPopulate_WritesFiles(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("d1")
	require.NoError(t, err)

	files := map[string]string{
		"main.tf":          `resource "null_resource" "x" {}`,
		"backend.tf":       "terraform {}",
		"terraform.tfvars": `project_name = "demo"`,
	}
	require.NoError(t, m.Populate(dir, files))

	for name, content := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}
}

func TestRelease_RemovesWorkspace(t *testing.T) {
	m := NewManager(t.TempDir())

	dir, err := m.Acquire("d1")
	require.NoError(t, err)
	require.NoError(t, m.Populate(dir, map[string]string{"main.tf": "x"}))

	m.Release(dir)

	assert.NoDirExists(t, dir)
}

func TestRelease_EmptyPathIsNoop(t *testing.T) {
	m := NewManager(t.TempDir())
	m.Release("")
}

func TestExists(t *testing.T) {
	m := NewManager(t.TempDir())

	_, ok := m.Exists("d1")
	assert.False(t, ok)

	dir, err := m.Acquire("d1")
	require.NoError(t, err)

	found, ok := m.Exists("d1")
	assert.True(t, ok)
	assert.Equal(t, dir, found)

	m.Release(dir)
	_, ok = m.Exists("d1")
	assert.False(t, ok)
}
