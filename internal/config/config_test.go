package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPSMIND_SETTINGS", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.DataFile != "data/incidents.json" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.OutputDir != "outputs" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.BaseBranch != "main" {
		t.Errorf("BaseBranch = %q", cfg.BaseBranch)
	}
	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.RequestTimeoutSeconds != 15 || cfg.MaxRetries != 2 || cfg.PRBudgetMinutes != 3 {
		t.Errorf("request policy = %d/%d/%d", cfg.RequestTimeoutSeconds, cfg.MaxRetries, cfg.PRBudgetMinutes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPSMIND_SETTINGS", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("PORT", "9090")
	t.Setenv("GITHUB_API_KEY", "ghp_test")
	t.Setenv("SLACK_BOT_AUTH", "xoxb-test")
	t.Setenv("REPOSITORY_URL", "https://github.com/acme/shop")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.GitHubToken != "ghp_test" || cfg.SlackBotToken != "xoxb-test" {
		t.Errorf("tokens = %q/%q", cfg.GitHubToken, cfg.SlackBotToken)
	}
	if cfg.RepositoryURL != "https://github.com/acme/shop" {
		t.Errorf("RepositoryURL = %q", cfg.RepositoryURL)
	}
}

func TestLoadSettingsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
http_port: 9000
output_dir: /var/opsmind
slack_channel: incidents
thresholds:
  critical: 95
  high: 80
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("OPSMIND_SETTINGS", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9000 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.OutputDir != "/var/opsmind" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.SlackChannel != "incidents" {
		t.Errorf("SlackChannel = %q", cfg.SlackChannel)
	}
	if cfg.Thresholds.Critical != 95 || cfg.Thresholds.High != 80 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	// Unset overlay fields keep their defaults.
	if cfg.Thresholds.Medium != 50 || cfg.Thresholds.Low != 30 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
}

func TestLoadBadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("OPSMIND_SETTINGS", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed settings file")
	}
}
