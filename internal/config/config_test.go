package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compat-runner.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine != EngineAuto {
		t.Errorf("Engine = %q, want %q", cfg.Engine, EngineAuto)
	}
	if cfg.ImageRepository != "marqoai/marqo" {
		t.Errorf("ImageRepository = %q", cfg.ImageRepository)
	}
	if cfg.ContainerPrefix != "marqo" {
		t.Errorf("ContainerPrefix = %q", cfg.ContainerPrefix)
	}
	if cfg.MarqoAPI != "http://localhost:8882" {
		t.Errorf("MarqoAPI = %q", cfg.MarqoAPI)
	}
	if len(cfg.Ports) != 1 || cfg.Ports[0] != "8882:8882" {
		t.Errorf("Ports = %v", cfg.Ports)
	}
	if !cfg.CaptureLogs {
		t.Error("CaptureLogs should default to true")
	}
	if cfg.Timeouts.Pull != 15*time.Minute || cfg.Timeouts.Ready != 5*time.Minute {
		t.Errorf("Timeouts = %+v", cfg.Timeouts)
	}
	if cfg.Harness.Kind != HarnessInProcess {
		t.Errorf("Harness.Kind = %q", cfg.Harness.Kind)
	}
	if !strings.Contains(cfg.Harness.Command, "{filter}") {
		t.Errorf("Harness.Command = %q", cfg.Harness.Command)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
engine = "podman"
ports = ["127.0.0.1:9882:8882"]
env = ["MARQO_MAX_CPU_MODEL_MEMORY=4"]
capture_logs = false

[timeouts]
pull = "20m"
ready = "0s"

[harness]
kind = "command"
command = "pytest -x --marqo-api={api} -m {filter}"
`)

	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if used != path {
		t.Errorf("used = %q, want %q", used, path)
	}
	if cfg.Engine != EnginePodman {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.Ports[0] != "127.0.0.1:9882:8882" {
		t.Errorf("Ports = %v", cfg.Ports)
	}
	if cfg.CaptureLogs {
		t.Error("capture_logs = false was overridden by the default")
	}
	if cfg.Timeouts.Pull != 20*time.Minute {
		t.Errorf("Timeouts.Pull = %v", cfg.Timeouts.Pull)
	}
	if cfg.Timeouts.Ready != 0 {
		t.Errorf("Timeouts.Ready = %v, want 0", cfg.Timeouts.Ready)
	}
	if cfg.Timeouts.Start != 2*time.Minute {
		t.Errorf("unset Timeouts.Start = %v, want default", cfg.Timeouts.Start)
	}
	if cfg.Harness.Kind != HarnessCommand {
		t.Errorf("Harness.Kind = %q", cfg.Harness.Kind)
	}
	if cfg.ImageRepository != "marqoai/marqo" {
		t.Errorf("unset ImageRepository = %q, want default", cfg.ImageRepository)
	}
}

func TestLoad_Lookup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvConfig, "")

	cfg, used, err := Load("")
	if err != nil {
		t.Fatalf("Load without file failed: %v", err)
	}
	if used != "" || cfg.Engine != EngineAuto {
		t.Errorf("expected defaults, got used=%q engine=%q", used, cfg.Engine)
	}

	if err := os.WriteFile(FileName, []byte(`engine = "docker"`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, used, err = Load("")
	if err != nil {
		t.Fatalf("Load from working directory failed: %v", err)
	}
	if used != FileName || cfg.Engine != EngineDocker {
		t.Errorf("used=%q engine=%q", used, cfg.Engine)
	}

	envPath := writeConfig(t, `engine = "podman"`)
	t.Setenv(EnvConfig, envPath)
	cfg, used, err = Load("")
	if err != nil {
		t.Fatalf("Load from env failed: %v", err)
	}
	if used != envPath || cfg.Engine != EnginePodman {
		t.Errorf("used=%q engine=%q", used, cfg.Engine)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", `engine = `, "failed to parse"},
		{"unknown key", `engnie = "docker"`, "unknown keys"},
		{"bad engine", `engine = "containerd"`, "engine must be"},
		{"bad harness", "[harness]\nkind = \"nose\"", "harness.kind"},
		{"empty command", "[harness]\nkind = \"command\"\ncommand = \"\"", "harness.command"},
		{"bad port", `ports = ["8882"]`, "invalid port mapping"},
		{"bad env", `env = ["NOVALUE"]`, "KEY=VALUE"},
		{"bad api", `marqo_api = "localhost:8882"`, "invalid marqo_api"},
		{"bad prefix", `container_prefix = "a/b"`, "container_prefix"},
		{"negative timeout", "[timeouts]\nstop = \"-1s\"", "timeouts.stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("expected error for missing explicit config")
	}
}
