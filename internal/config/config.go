package config

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const DefaultPath = "config.yaml"

// AppConfig holds the application configuration.
type AppConfig struct {
	Debug       bool                 `yaml:"debug"`
	Headless    bool                 `yaml:"headless"`
	Browser     AppConfigBrowser     `yaml:"browser"`
	Fixtures    AppConfigFixtures    `yaml:"fixtures"`
	Screenshots AppConfigScreenshots `yaml:"screenshots"`
	Wait        AppConfigWait        `yaml:"wait"`
	Scenarios   []string             `yaml:"scenarios"`
	Report      string               `yaml:"report"`
	Parallel    int                  `yaml:"parallel"`
}

type AppConfigBrowser struct {
	ExecPath     string   `yaml:"exec-path"`
	Args         []string `yaml:"args"`
	UserDataDir  string   `yaml:"user-data-dir,omitempty"`
	UserAgent    string   `yaml:"user-agent,omitempty"`
	WindowWidth  int      `yaml:"window-width"`
	WindowHeight int      `yaml:"window-height"`
	Session      string   `yaml:"session,omitempty"`
}

type AppConfigFixtures struct {
	Dir  string `yaml:"dir,omitempty"`
	Port string `yaml:"port"`
}

type AppConfigScreenshots struct {
	Dir string `yaml:"dir"`
}

type AppConfigWait struct {
	TimeoutMs  int `yaml:"timeout-ms"`
	IntervalMs int `yaml:"interval-ms"`
}

func (w AppConfigWait) Timeout() time.Duration {
	return time.Duration(w.TimeoutMs) * time.Millisecond
}

func (w AppConfigWait) Interval() time.Duration {
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := &AppConfig{Headless: true}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Browser.WindowWidth <= 0 {
		c.Browser.WindowWidth = 1280
	}
	if c.Browser.WindowHeight <= 0 {
		c.Browser.WindowHeight = 800
	}
	if c.Fixtures.Port == "" {
		c.Fixtures.Port = "8088"
	}
	if c.Screenshots.Dir == "" {
		c.Screenshots.Dir = "screenshots"
	}
	if c.Wait.TimeoutMs <= 0 {
		c.Wait.TimeoutMs = 10000
	}
	if c.Wait.IntervalMs <= 0 {
		c.Wait.IntervalMs = 500
	}
	if len(c.Scenarios) == 0 {
		c.Scenarios = []string{"scenarios/*.yaml", "scenarios/*.yml"}
	}
	if c.Report == "" {
		c.Report = "report.json"
	}
	if c.Parallel <= 0 {
		c.Parallel = 1
	}
}

// LoadConfig reads the YAML file at path over Default, so keys the file
// leaves out keep their default. A missing file yields Default.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return config, nil
}
