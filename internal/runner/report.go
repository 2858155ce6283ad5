package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Report accumulates scenario results as a JSON document.
type Report struct {
	mu  sync.Mutex
	raw string
}

func NewReport() *Report {
	raw := `{"scenarios":[]}`
	raw, _ = sjson.Set(raw, "run", uuid.NewString())
	raw, _ = sjson.Set(raw, "started", time.Now().UTC().Format(time.RFC3339))
	raw, _ = sjson.Set(raw, "passed", 0)
	raw, _ = sjson.Set(raw, "failed", 0)
	return &Report{raw: raw}
}

func (r *Report) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gjson.Get(r.raw, "run").String()
}

// Add appends a scenario result and updates the totals.
func (r *Report) Add(result *ScenarioResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := gjson.Get(r.raw, "scenarios.#").Int()
	prefix := fmt.Sprintf("scenarios.%d.", idx)

	raw, err := sjson.Set(r.raw, "scenarios.-1", map[string]any{"name": result.Name})
	if err != nil {
		return err
	}
	set := func(path string, value any) {
		if err != nil {
			return
		}
		raw, err = sjson.Set(raw, prefix+path, value)
	}
	set("url", result.URL)
	set("passed", result.Passed())
	set("duration_ms", result.Duration.Milliseconds())
	if result.Err != nil {
		set("error", result.Err.Error())
	}
	set("steps", []any{})
	for _, step := range result.Steps {
		entry := map[string]any{
			"index":       step.Index,
			"action":      step.Action,
			"attempts":    step.Attempts,
			"passed":      step.Passed(),
			"duration_ms": step.Duration.Milliseconds(),
		}
		if step.Field != "" {
			entry["field"] = step.Field
		}
		if step.Value != nil {
			entry["value"] = step.Value
		}
		if step.Err != nil {
			entry["error"] = step.Err.Error()
		}
		if step.Screenshot != "" {
			entry["screenshot"] = step.Screenshot
		}
		set("steps.-1", entry)
	}
	if err != nil {
		return fmt.Errorf("failed to record scenario %s: %w", result.Name, err)
	}

	counter := "failed"
	if result.Passed() {
		counter = "passed"
	}
	raw, err = sjson.Set(raw, counter, gjson.Get(raw, counter).Int()+1)
	if err != nil {
		return err
	}
	r.raw = raw
	return nil
}

// Totals returns the number of passed and failed scenarios.
func (r *Report) Totals() (passed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(gjson.Get(r.raw, "passed").Int()), int(gjson.Get(r.raw, "failed").Int())
}

// Get queries the report with a gjson path.
func (r *Report) Get(path string) gjson.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gjson.Get(r.raw, path)
}

func (r *Report) JSON() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw
}

func (r *Report) Save(path string) error {
	data := []byte(gjson.Get(r.JSON(), "@pretty").Raw)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
