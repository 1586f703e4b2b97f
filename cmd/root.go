package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marqo-ai/compat-runner/internal/app"
	"github.com/marqo-ai/compat-runner/internal/config"
	"github.com/marqo-ai/compat-runner/internal/errors"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/orchestrator"

	// Built-in compatibility cases.
	_ "github.com/marqo-ai/compat-runner/internal/suites"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
	engineFlag string
	artifacts  string
)

var scenario struct {
	mode           string
	fromVersion    string
	toVersion      string
	fromImage      string
	toImage        string
	marqoAPI       string
	harness        string
	harnessCommand string
	cases          []string
}

var rootCmd = &cobra.Command{
	Use:   "compat-runner",
	Short: "Marqo backwards compatibility and rollback test runner",
	Long: `compat-runner checks that state written by one Marqo version is still
served correctly by another.

It starts the from-version container, runs the prepare phase against it,
stops it, starts the to-version container on the same volumes and runs the
test phase. In rollback mode it then moves the state back to the from
version and tests again. Containers are always removed at the end.`,
	Example: `  compat-runner --mode backwards_compatibility --from_version 2.5 --to_version 2.6
  compat-runner --mode rollback --from_version 2.5 --to_version 2.6 --to_image marqo:dev
  compat-runner --mode rollback --from_version 2.5 --to_version 2.6 --harness command`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		return loadConfig(cmd)
	},
	RunE: runScenario,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	pf.StringVar(&configPath, "config", "", "Configuration file (default $"+config.EnvConfig+" or ./"+config.FileName+")")
	pf.StringVar(&engineFlag, "engine", "", "Container engine: auto, docker or podman")
	pf.StringVar(&artifacts, "artifacts", "", "Directory for run events and container logs")

	f := rootCmd.Flags()
	f.StringVar(&scenario.mode, "mode", "", "Scenario: backwards_compatibility or rollback")
	f.StringVar(&scenario.fromVersion, "from_version", "", "Marqo version the state is created with")
	f.StringVar(&scenario.toVersion, "to_version", "", "Marqo version the state is moved to")
	f.StringVar(&scenario.fromImage, "from_image", "", "Image for the from version (default <repository>:<from_version>)")
	f.StringVar(&scenario.toImage, "to_image", "", "Image for the to version (default <repository>:<to_version>)")
	f.StringVar(&scenario.marqoAPI, "marqo-api", "", "Marqo API URL the phases run against (default from config)")
	f.StringVar(&scenario.harness, "harness", "", "Test phase backend: inprocess or command")
	f.StringVar(&scenario.harnessCommand, "harness-command", "", "External test command; {api} {filter} {from} {to} are substituted")
	f.StringSliceVar(&scenario.cases, "case", nil, "Restrict the run to these in-process cases (repeatable)")
	_ = rootCmd.MarkFlagRequired("mode")
	_ = rootCmd.MarkFlagRequired("from_version")
	_ = rootCmd.MarkFlagRequired("to_version")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig reads the configuration file and applies persistent flag
// overrides.
func loadConfig(cmd *cobra.Command) error {
	a := app.Default
	if err := a.LoadConfig(configPath); err != nil {
		return err
	}
	if engineFlag != "" {
		a.Config.Engine = engineFlag
	}
	if artifacts != "" {
		a.Config.ArtifactsDir = artifacts
	}
	if err := a.Config.Validate(); err != nil {
		return errors.ConfigError("invalid configuration", err)
	}
	return nil
}

// applyScenarioFlags applies the scenario flags that override configuration.
func applyScenarioFlags(cfg *config.Config) error {
	if scenario.harnessCommand != "" {
		cfg.Harness.Command = scenario.harnessCommand
		if scenario.harness == "" {
			cfg.Harness.Kind = config.HarnessCommand
		}
	}
	if scenario.harness != "" {
		cfg.Harness.Kind = scenario.harness
	}
	if scenario.marqoAPI != "" {
		cfg.MarqoAPI = scenario.marqoAPI
	}
	if err := cfg.Validate(); err != nil {
		return errors.ConfigError("invalid configuration", err)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	mode, err := orchestrator.ParseMode(scenario.mode)
	if err != nil {
		return err
	}

	a := app.Default
	if err := applyScenarioFlags(a.Config); err != nil {
		return err
	}
	if len(scenario.cases) > 0 && a.Config.Harness.Kind == config.HarnessCommand {
		logWarning("--case only restricts the prepare phase with the command harness")
	}

	params := orchestrator.Params{
		FromVersion: scenario.fromVersion,
		ToVersion:   scenario.toVersion,
		FromImage:   scenario.fromImage,
		ToImage:     scenario.toImage,
		APIURL:      a.Config.MarqoAPI,
		Cases:       scenario.cases,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	o, err := a.Orchestrator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logInfo("Running %s scenario %s -> %s (run %s)", mode, params.FromVersion, params.ToVersion, o.Containers.RunID())
	res := o.Run(ctx, mode, params)
	printResult(cmd.OutOrStdout(), res)

	return res.ExitErr()
}
