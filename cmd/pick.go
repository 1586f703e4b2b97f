package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marqo-ai/compat-runner/internal/app"
	"github.com/marqo-ai/compat-runner/internal/config"
	"github.com/marqo-ai/compat-runner/internal/logging"
	"github.com/marqo-ai/compat-runner/internal/orchestrator"
	"github.com/marqo-ai/compat-runner/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick compatibility cases interactively and run them",
	Long: `Opens an interactive TUI listing the cases selected for the version
pair, then runs a scenario restricted to the chosen cases.

Use arrow keys or j/k to navigate, / to filter.

Actions:
  Space  - Toggle the case under the cursor
  a      - Toggle all cases
  Enter  - Run the checked cases (or the one under the cursor)
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	f := pickCmd.Flags()
	f.StringVar(&scenario.mode, "mode", "", "Scenario: backwards_compatibility or rollback (default backwards_compatibility)")
	f.StringVar(&scenario.fromVersion, "from_version", "", "Marqo version the state is created with")
	f.StringVar(&scenario.toVersion, "to_version", "", "Marqo version the state is moved to")
	f.StringVar(&scenario.fromImage, "from_image", "", "Image for the from version")
	f.StringVar(&scenario.toImage, "to_image", "", "Image for the to version")
	f.StringVar(&scenario.marqoAPI, "marqo-api", "", "Marqo API URL the phases run against")
	_ = pickCmd.MarkFlagRequired("from_version")
	_ = pickCmd.MarkFlagRequired("to_version")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	logging.Debug("picker mode started")

	eligible, err := phaseCases(app.Default.Registry, "test", scenario.fromVersion, scenario.toVersion)
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		logInfo("No compatibility cases apply to %s -> %s", scenario.fromVersion, scenario.toVersion)
		return nil
	}

	title := fmt.Sprintf("Marqo %s -> %s", scenario.fromVersion, scenario.toVersion)
	result, err := tui.RunPicker(eligible, title)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action, "cases", result.Cases)

	if result.Action != tui.ActionRun {
		return nil
	}
	if scenario.mode == "" {
		scenario.mode = string(orchestrator.ModeUpgrade)
	}
	scenario.harness = config.HarnessInProcess
	scenario.cases = result.Cases
	return runScenario(cmd, nil)
}
