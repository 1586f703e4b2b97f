package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
)

const (
	// FileName is the configuration file looked up in the working directory.
	FileName = "compat-runner.toml"

	// EnvConfig names an environment variable holding a configuration path.
	EnvConfig = "COMPAT_RUNNER_CONFIG"
)

// Engine values.
const (
	EngineAuto   = "auto"
	EngineDocker = "docker"
	EnginePodman = "podman"
)

// Harness kinds.
const (
	HarnessInProcess = "inprocess"
	HarnessCommand   = "command"
)

// portRegex accepts container port mappings: [ip:]host:container[/proto].
var portRegex = regexp.MustCompile(`^([0-9.]+:)?[0-9]{1,5}:[0-9]{1,5}(/(tcp|udp))?$`)

// Config is the runner configuration.
type Config struct {
	Engine          string   `toml:"engine" default:"auto"`
	ImageRepository string   `toml:"image_repository" default:"marqoai/marqo"`
	ContainerPrefix string   `toml:"container_prefix" default:"marqo"`
	MarqoAPI        string   `toml:"marqo_api" default:"http://localhost:8882"`
	Ports           []string `toml:"ports" default:"[\"8882:8882\"]"`
	Env             []string `toml:"env"`
	ExtraRunArgs    []string `toml:"extra_run_args"`

	// ArtifactsDir holds the audit log and captured container logs.
	ArtifactsDir string `toml:"artifacts_dir" default:".compat-runner"`
	CaptureLogs  bool   `toml:"capture_logs" default:"true"`

	Timeouts Timeouts      `toml:"timeouts"`
	Harness  HarnessConfig `toml:"harness"`
}

// Timeouts bounds each container operation. Zero disables a bound.
type Timeouts struct {
	Pull    time.Duration `toml:"pull" default:"15m"`
	Start   time.Duration `toml:"start" default:"2m"`
	Stop    time.Duration `toml:"stop" default:"1m"`
	Remove  time.Duration `toml:"remove" default:"1m"`
	Ready   time.Duration `toml:"ready" default:"5m"`
	Cleanup time.Duration `toml:"cleanup" default:"3m"`
}

// HarnessConfig selects and configures the test phase backend.
type HarnessConfig struct {
	Kind    string `toml:"kind" default:"inprocess"`
	Command string `toml:"command" default:"pytest --marqo-api={api} -m {filter}"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// Load reads the configuration file at path over the defaults. When path
// is empty it tries $COMPAT_RUNNER_CONFIG, then ./compat-runner.toml; a
// missing ./compat-runner.toml is not an error. It returns the file that
// was read, or "" when only defaults apply.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = FileName
		explicit = false
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, "", nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, "", fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// Validate checks that the Config is valid.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineAuto, EngineDocker, EnginePodman:
	default:
		return fmt.Errorf("engine must be %s, %s or %s, got %q", EngineAuto, EngineDocker, EnginePodman, c.Engine)
	}

	switch c.Harness.Kind {
	case HarnessInProcess:
	case HarnessCommand:
		if strings.TrimSpace(c.Harness.Command) == "" {
			return fmt.Errorf("harness.command is required for the command harness")
		}
	default:
		return fmt.Errorf("harness.kind must be %s or %s, got %q", HarnessInProcess, HarnessCommand, c.Harness.Kind)
	}

	if c.ImageRepository == "" {
		return fmt.Errorf("image_repository is required")
	}
	if c.ContainerPrefix == "" || strings.ContainsAny(c.ContainerPrefix, " /:") {
		return fmt.Errorf("invalid container_prefix %q", c.ContainerPrefix)
	}

	if u, err := url.Parse(c.MarqoAPI); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid marqo_api %q", c.MarqoAPI)
	}

	for _, p := range c.Ports {
		if !portRegex.MatchString(p) {
			return fmt.Errorf("invalid port mapping %q", p)
		}
	}
	for _, e := range c.Env {
		if !strings.Contains(e, "=") {
			return fmt.Errorf("invalid env entry %q: must be KEY=VALUE", e)
		}
	}

	t := c.Timeouts
	for name, d := range map[string]time.Duration{
		"pull": t.Pull, "start": t.Start, "stop": t.Stop,
		"remove": t.Remove, "ready": t.Ready, "cleanup": t.Cleanup,
	} {
		if d < 0 {
			return fmt.Errorf("timeouts.%s cannot be negative", name)
		}
	}
	return nil
}
