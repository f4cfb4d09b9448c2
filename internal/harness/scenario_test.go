package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenarioFile(t, `
name: smoke
description: minimal scenario
dataset:
  items:
    - { id: 1 }
query:
  table: items
expect:
  - { id: 1 }
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
	assert.Equal(t, "items", s.Query.Table)
	require.Len(t, s.Expect, 1)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioMissingName(t *testing.T) {
	path := writeScenarioFile(t, `
query:
  table: items
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestLoadScenarioMissingTable(t *testing.T) {
	path := writeScenarioFile(t, `
name: no-table
query: {}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no table")
}

func TestLoadScenarioMalformedYAML(t *testing.T) {
	path := writeScenarioFile(t, "name: [unclosed")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}
