package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

// Scenario is one scenario file: a page to open, the fields it declares and
// the steps run against them.
type Scenario struct {
	Name   string          `yaml:"name"`
	URL    string          `yaml:"url"`
	Title  string          `yaml:"title"`
	Fields []ScenarioField `yaml:"fields"`
	Steps  []ScenarioStep  `yaml:"steps"`

	path string
}

// Path is the file the scenario was loaded from.
func (s *Scenario) Path() string {
	return s.path
}

type ScenarioField struct {
	Name string `yaml:"name"`
	// Type is a registered field wrapper name; "base" when empty.
	Type string `yaml:"type"`
	By   string `yaml:"by"`
}

type ScenarioStep struct {
	// Field names the target; the page itself when empty.
	Field       string   `yaml:"field"`
	Action      string   `yaml:"action"`
	Description string   `yaml:"description"`
	Params      []string `yaml:"params"`
	Expect      any      `yaml:"expect"`
	ExpectPath  string   `yaml:"expect-path"`
	Retry       int      `yaml:"retry"`
	// Store saves the step value as a variable, referenced as #name# in
	// later params.
	Store      string `yaml:"store"`
	Screenshot bool   `yaml:"screenshot"`
}

func (s ScenarioStep) target() string {
	if s.Field == "" {
		return "page"
	}
	return s.Field
}

// ParseScenario decodes a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) validate() error {
	names := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if names[f.Name] {
			return fmt.Errorf("field %s declared twice", f.Name)
		}
		names[f.Name] = true
	}
	for i, step := range s.Steps {
		if step.Action == "" {
			return fmt.Errorf("step %d has no action", i)
		}
		if step.Field != "" && !names[step.Field] {
			return fmt.Errorf("step %d uses undeclared field %s", i, step.Field)
		}
		if step.Retry < 0 {
			return fmt.Errorf("step %d has negative retry", i)
		}
	}
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", path, err)
	}
	if scenario.Name == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	scenario.path = path
	return scenario, nil
}

// LoadScenarios loads every file matched by the patterns, each once, in path
// order. A pattern without glob characters must name an existing file.
func LoadScenarios(patterns []string) ([]*Scenario, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", pattern, err)
		}
		if len(matches) == 0 && !strings.ContainsAny(pattern, "*?[") {
			return nil, fmt.Errorf("scenario file %s not found", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, file := range files {
		log.Debugf("Loading scenario file: %s", file)
		scenario, err := LoadScenario(file)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	log.Debugf("Total loaded %d scenario files", len(scenarios))
	return scenarios, nil
}
