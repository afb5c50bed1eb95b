package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort int

	// Incident store mirror file
	DataFile string

	// Base directory for generated artifacts
	OutputDir string

	// GitHub Configuration
	GitHubToken   string
	RepositoryURL string
	BaseBranch    string

	// Slack Configuration
	SlackBotToken string
	SlackChannel  string

	// Alert severity thresholds (overridable via settings file)
	Thresholds Thresholds

	// Outbound request policy
	RequestTimeoutSeconds int
	MaxRetries            int
	PRBudgetMinutes       int
}

// Thresholds define the metric-value cutoffs for P1-P4 severity mapping.
type Thresholds struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
	Low      float64 `yaml:"low"`
}

// DefaultThresholds returns the standard severity cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 90, High: 70, Medium: 50, Low: 30}
}

// settingsFile is the optional YAML settings overlay.
type settingsFile struct {
	HTTPPort              int        `yaml:"http_port"`
	DataFile              string     `yaml:"data_file"`
	OutputDir             string     `yaml:"output_dir"`
	RepositoryURL         string     `yaml:"repository_url"`
	BaseBranch            string     `yaml:"base_branch"`
	SlackChannel          string     `yaml:"slack_channel"`
	Thresholds            Thresholds `yaml:"thresholds"`
	RequestTimeoutSeconds int        `yaml:"request_timeout_seconds"`
	MaxRetries            int        `yaml:"max_retries"`
	PRBudgetMinutes       int        `yaml:"pr_budget_minutes"`
}

// Load reads configuration from environment variables, then applies the
// optional YAML settings file named by OPSMIND_SETTINGS (default
// "settings.yaml" when present).
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsIntOrDefault("PORT", 8080)
	cfg.DataFile = getEnvOrDefault("INCIDENT_DATA_FILE", "data/incidents.json")
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", "outputs")

	// Tokens are read from the environment only, never from the settings file
	cfg.GitHubToken = os.Getenv("GITHUB_API_KEY")
	cfg.SlackBotToken = os.Getenv("SLACK_BOT_AUTH")

	cfg.RepositoryURL = os.Getenv("REPOSITORY_URL")
	cfg.BaseBranch = getEnvOrDefault("BASE_BRANCH", "main")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")

	cfg.Thresholds = DefaultThresholds()
	cfg.RequestTimeoutSeconds = getEnvAsIntOrDefault("REQUEST_TIMEOUT_SECONDS", 15)
	cfg.MaxRetries = getEnvAsIntOrDefault("MAX_RETRIES", 2)
	cfg.PRBudgetMinutes = getEnvAsIntOrDefault("PR_BUDGET_MINUTES", 3)

	settingsPath := getEnvOrDefault("OPSMIND_SETTINGS", "settings.yaml")
	if err := cfg.applySettingsFile(settingsPath); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applySettingsFile overlays non-zero values from the YAML settings file.
// A missing file is not an error.
func (c *Config) applySettingsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var s settingsFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if s.HTTPPort != 0 {
		c.HTTPPort = s.HTTPPort
	}
	if s.DataFile != "" {
		c.DataFile = s.DataFile
	}
	if s.OutputDir != "" {
		c.OutputDir = s.OutputDir
	}
	if s.RepositoryURL != "" {
		c.RepositoryURL = s.RepositoryURL
	}
	if s.BaseBranch != "" {
		c.BaseBranch = s.BaseBranch
	}
	if s.SlackChannel != "" {
		c.SlackChannel = s.SlackChannel
	}
	if s.Thresholds.Critical != 0 {
		c.Thresholds.Critical = s.Thresholds.Critical
	}
	if s.Thresholds.High != 0 {
		c.Thresholds.High = s.Thresholds.High
	}
	if s.Thresholds.Medium != 0 {
		c.Thresholds.Medium = s.Thresholds.Medium
	}
	if s.Thresholds.Low != 0 {
		c.Thresholds.Low = s.Thresholds.Low
	}
	if s.RequestTimeoutSeconds != 0 {
		c.RequestTimeoutSeconds = s.RequestTimeoutSeconds
	}
	if s.MaxRetries != 0 {
		c.MaxRetries = s.MaxRetries
	}
	if s.PRBudgetMinutes != 0 {
		c.PRBudgetMinutes = s.PRBudgetMinutes
	}

	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
