package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "login-form.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
url: /pages/text.html
fields:
  - name: text
    type: text
    by: id=text
steps:
  - field: text
    action: Fill
    params: [hello]
    description: types a greeting
  - action: Title
    expect: page for text tests
    screenshot: true
`), 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "login-form", scenario.Name)
	assert.Equal(t, path, scenario.Path())
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, []string{"hello"}, scenario.Steps[0].Params)
	assert.Equal(t, "text", scenario.Steps[0].target())
	assert.Equal(t, "page", scenario.Steps[1].target())
	assert.True(t, scenario.Steps[1].Screenshot)
	assert.Equal(t, "page for text tests", scenario.Steps[1].Expect)

	scenarios, err := LoadScenarios([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "*.yml")})
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
}

func TestLoadScenarioInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - retry: -1\n    action: Click\n"), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "negative retry")
}
