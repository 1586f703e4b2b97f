package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marqo-ai/compat-runner/internal/app"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Display the step-by-step event log of a run",
	Long: `Displays the recorded steps of a run: container starts and stops,
readiness, prepare, test and cleanup. Without --run the most recent run
is shown.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

var eventsFlags struct {
	run   string
	list  bool
	jsonl bool
}

func init() {
	eventsCmd.Flags().StringVar(&eventsFlags.run, "run", "", "Run id (default: most recent)")
	eventsCmd.Flags().BoolVar(&eventsFlags.list, "list", false, "List recorded run ids")
	eventsCmd.Flags().BoolVar(&eventsFlags.jsonl, "jsonl", false, "Output events as JSON lines")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	auditLogger := app.Default.AuditLogger()
	out := cmd.OutOrStdout()

	runs, err := auditLogger.Runs()
	if err != nil {
		return err
	}
	if eventsFlags.list {
		for _, r := range runs {
			fmt.Fprintln(out, r)
		}
		return nil
	}

	run := eventsFlags.run
	if run == "" {
		if len(runs) == 0 {
			logInfo("No runs recorded in %s", app.Default.Config.ArtifactsDir)
			return nil
		}
		run = runs[0]
	}

	events, err := auditLogger.Events(run)
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for run %s", run)
		return nil
	}

	for _, e := range events {
		if eventsFlags.jsonl {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("[%s] %-14s %s", ts, e.Type, e.Container)
		if e.Details != "" {
			line += " (" + e.Details + ")"
		}
		if e.Error != "" {
			line += " error: " + e.Error
		}
		fmt.Fprintln(out, line)
	}

	return nil
}
