// Package config loads compat-runner settings from a TOML file.
//
// # Lookup
//
// The file is taken from --config, then $COMPAT_RUNNER_CONFIG, then
// ./compat-runner.toml. Without a file the defaults apply. Command-line
// flags override file values.
//
// # Example
//
//	engine = "podman"
//	image_repository = "marqoai/marqo"
//	marqo_api = "http://localhost:8882"
//	ports = ["8882:8882"]
//	env = ["MARQO_MAX_CPU_MODEL_MEMORY=4"]
//	artifacts_dir = ".compat-runner"
//
//	[timeouts]
//	pull = "20m"
//	ready = "10m"
//
//	[harness]
//	kind = "command"
//	command = "pytest tests/backwards_compatibility_tests --marqo-api={api} -m {filter}"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config
