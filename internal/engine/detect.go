package engine

import (
	"fmt"
	"os/exec"

	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/system"
)

// Type identifies which container engine to use
type Type string

const (
	TypeDocker Type = "docker"
	TypePodman Type = "podman"
	TypeAuto   Type = "auto"
)

// lookPath is replaced in tests
var lookPath = exec.LookPath

// Config holds engine configuration
type Config struct {
	// Type specifies which engine to use (or "auto" for auto-detection)
	Type Type

	// Executor runs engine commands; defaults to system.DefaultExecutor()
	Executor system.CommandExecutor
}

// Detect determines which container engine is available on the system.
// Docker is preferred because the published Marqo images target it.
func Detect() (Type, error) {
	for _, t := range []Type{TypeDocker, TypePodman} {
		if _, err := lookPath(string(t)); err == nil {
			logging.Debug("detected container engine", "engine", t)
			return t, nil
		}
	}
	return "", fmt.Errorf("no supported container engine found (tried: docker, podman)")
}

// New creates an engine from the given config.
func New(cfg Config) (Engine, error) {
	t := cfg.Type
	if t == "" || t == TypeAuto {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		t = detected
	}

	switch t {
	case TypeDocker, TypePodman:
		if _, err := lookPath(string(t)); err != nil {
			return nil, fmt.Errorf("%s not found in PATH: %w", t, err)
		}
		return NewCLIEngine(string(t), cfg.Executor), nil
	default:
		return nil, fmt.Errorf("unknown container engine: %s (must be docker, podman, or auto)", t)
	}
}
