package runner

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/luispater/wiselenium/driver"
	"github.com/luispater/wiselenium/internal/drivertest"
	"github.com/luispater/wiselenium/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := fixture.NewServer(fixture.Config{})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newRunner(ts *httptest.Server, screenshots string) *Runner {
	return NewRunner(Options{
		Timeout:       time.Second,
		Interval:      5 * time.Millisecond,
		ScreenshotDir: screenshots,
		BaseURL:       ts.URL,
	})
}

func TestRunScenarioFiles(t *testing.T) {
	ts := fixtureServer(t)
	r := newRunner(ts, "")

	scenarios, err := LoadScenarios([]string{"testdata/*.yaml"})
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			d := drivertest.New(drivertest.WithClient(ts.Client()))
			result, err := r.Run(context.Background(), d, scenario)
			require.NoError(t, err)
			assert.True(t, result.Passed())
			assert.Len(t, result.Steps, len(scenario.Steps))
			for _, step := range result.Steps {
				assert.Equal(t, 1, step.Attempts)
			}
		})
	}
}

func TestRunFailingStep(t *testing.T) {
	ts := fixtureServer(t)
	dir := t.TempDir()
	r := newRunner(ts, dir)

	scenario, err := ParseScenario([]byte(`
name: failing run
url: /pages/checkbox.html
fields:
  - name: checkbox
    type: checkbox
steps:
  - field: checkbox
    action: IsChecked
    expect: true
    retry: 2
  - field: checkbox
    action: Check
`))
	require.NoError(t, err)

	d := drivertest.New(drivertest.WithClient(ts.Client()))
	result, err := r.Run(context.Background(), d, scenario)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpectationFailed)
	assert.False(t, result.Passed())

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, 3, step.Attempts)
	assert.Equal(t, false, step.Value)
	assert.Equal(t, filepath.Join(dir, "failing_run-step0.png"), step.Screenshot)
	assert.FileExists(t, step.Screenshot)
}

func TestRunUnknownActionIsNotRetried(t *testing.T) {
	ts := fixtureServer(t)
	r := newRunner(ts, "")

	scenario, err := ParseScenario([]byte(`
url: /pages/checkbox.html
fields:
  - name: checkbox
    type: checkbox
steps:
  - field: checkbox
    action: Explode
    retry: 5
`))
	require.NoError(t, err)

	result, err := r.Run(context.Background(), drivertest.New(drivertest.WithClient(ts.Client())), scenario)
	assert.ErrorIs(t, err, ErrUnknownAction)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, 1, result.Steps[0].Attempts)
}

func TestRunScriptsAndVariables(t *testing.T) {
	d := drivertest.New(drivertest.WithDocument("http://fake/", `<html><head><title>t</title></head><body><input id="q" value="go"></body></html>`))
	d.HandleScript("return arguments[0] + arguments[1]", func(_ *drivertest.Driver, args []any) (any, error) {
		return args[0].(string) + args[1].(string), nil
	})

	scenario, err := ParseScenario([]byte(`
url: http://fake/
title: t
fields:
  - name: q
    type: text
steps:
  - field: q
    action: Value
    store: word
  - action: ExecuteScript
    params: ["return arguments[0] + arguments[1]", "#word#", "ne"]
    expect: gone
  - field: q
    action: Fill
    params: ["#word#"]
  - field: q
    action: MaxLength
    expect: -1
  - action: Screenshot
    params: [shot]
`))
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := NewRunner(Options{Timeout: time.Second, ScreenshotDir: dir}).Run(context.Background(), d, scenario)
	require.NoError(t, err)
	assert.Equal(t, "gone", result.Steps[1].Value)
	assert.Equal(t, filepath.Join(dir, "shot.png"), result.Steps[4].Value)
	assert.FileExists(t, filepath.Join(dir, "shot.png"))
}

func TestRunExpectsStoredVariables(t *testing.T) {
	d := drivertest.New(drivertest.WithDocument("http://fake/", `<html><head><title>t</title></head><body><input id="q" value="go"><input id="r" value="go"></body></html>`))
	d.HandleScript("return {word: arguments[0]}", func(_ *drivertest.Driver, args []any) (any, error) {
		return map[string]any{"word": args[0]}, nil
	})

	scenario, err := ParseScenario([]byte(`
url: http://fake/
fields:
  - name: q
    type: text
  - name: r
    type: text
steps:
  - field: q
    action: Value
    store: word
  - field: r
    action: Value
    expect: "#word#"
  - action: ExecuteScript
    params: ["return {word: arguments[0]}", "#word#"]
    expect-path: word
    expect: "#word#"
`))
	require.NoError(t, err)

	result, err := NewRunner(Options{Timeout: time.Second}).Run(context.Background(), d, scenario)
	require.NoError(t, err)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "go", result.Steps[1].Value)

	scenario, err = ParseScenario([]byte(`
url: http://fake/
fields:
  - name: r
    type: text
steps:
  - field: r
    action: Value
    expect: "#missing#"
`))
	require.NoError(t, err)
	_, err = NewRunner(Options{Timeout: time.Second}).Run(context.Background(), d, scenario)
	assert.ErrorContains(t, err, "undefined variable missing")
}

func TestRunBadScenarios(t *testing.T) {
	_, err := ParseScenario([]byte("steps:\n  - field: nope\n    action: Click\n"))
	assert.ErrorContains(t, err, "undeclared field")

	_, err = ParseScenario([]byte("steps:\n  - field: \"\"\n"))
	assert.ErrorContains(t, err, "no action")

	_, err = ParseScenario([]byte("fields:\n  - name: a\n  - name: a\n"))
	assert.ErrorContains(t, err, "declared twice")

	scenario, err := ParseScenario([]byte("url: http://fake/\nfields:\n  - name: a\n    type: spinner\n"))
	require.NoError(t, err)
	d := drivertest.New(drivertest.WithDocument("http://fake/", "<html></html>"))
	_, err = NewRunner(Options{}).Run(context.Background(), d, scenario)
	assert.ErrorContains(t, err, "unknown type spinner")

	_, err = LoadScenarios([]string{"testdata/absent.yaml"})
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	ts := fixtureServer(t)
	r := newRunner(ts, "")

	scenarios, err := LoadScenarios([]string{"testdata/*.yaml", "testdata/radiobutton.yaml"})
	require.NoError(t, err)
	require.Len(t, scenarios, 3)

	broken, err := ParseScenario([]byte("name: broken\nurl: /pages/missing.html\n"))
	require.NoError(t, err)
	scenarios = append(scenarios, broken)

	var opened, released atomic.Int32
	report, err := r.RunAll(context.Background(), scenarios, 2, func(context.Context) (driver.Driver, func(), error) {
		opened.Add(1)
		return drivertest.New(drivertest.WithClient(ts.Client())), func() { released.Add(1) }, nil
	})
	require.NoError(t, err)

	assert.EqualValues(t, 4, opened.Load())
	assert.EqualValues(t, 4, released.Load())

	passed, failed := report.Totals()
	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, failed)

	assert.NotEmpty(t, report.RunID())
	assert.Equal(t, "navigation", report.Get("scenarios.0.name").String())
	assert.Equal(t, "radiobutton", report.Get("scenarios.1.name").String())
	assert.Equal(t, "broken", report.Get("scenarios.3.name").String())
	assert.False(t, report.Get("scenarios.3.passed").Bool())
	assert.Contains(t, report.Get("scenarios.3.error").String(), "status 404")
	assert.Equal(t, "Check", report.Get("scenarios.1.steps.1.action").String())
	assert.Equal(t, "radiobuttonValue", report.Get("scenarios.1.steps.3.value").String())

	path := filepath.Join(t.TempDir(), "out", "report.json")
	require.NoError(t, report.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"passed": 3`)
}

func TestConvertToType(t *testing.T) {
	tests := []struct {
		input string
		value any
	}{
		{"42", 42},
		{"7", uint8(7)},
		{"1.5", 1.5},
		{"true", true},
		{"text", "text"},
		{"250ms", 250 * time.Millisecond},
		{"css=#a", driver.CSS("#a")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := convertToType(tt.input, reflect.TypeOf(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.value, v.Interface())
		})
	}

	_, err := convertToType("x", reflect.TypeOf(0))
	assert.Error(t, err)
	_, err = convertToType("x", reflect.TypeOf([]int{}))
	assert.ErrorContains(t, err, "unsupported parameter type")
}
