package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marqo-ai/compat-runner/internal/app"
	"github.com/marqo-ai/compat-runner/internal/errors"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Force-remove containers left behind by an interrupted run",
	Long: `Force-removes the containers a scenario would name for the given
versions (<container_prefix>-<version>). A normal run removes its own
containers; this is for runs that were killed before they could.`,
	Example: `  compat-runner cleanup --version 2.5 --version 2.6`,
	Args:    cobra.NoArgs,
	RunE:    runCleanup,
}

var cleanupVersions []string

func init() {
	cleanupCmd.Flags().StringSliceVar(&cleanupVersions, "version", nil, "Version whose container to remove (repeatable)")
	_ = cleanupCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	m, err := app.Default.Manager()
	if err != nil {
		return err
	}

	ctx := context.Background()
	failed := 0
	for _, v := range cleanupVersions {
		name := m.ContainerName(v)
		if err := m.ForceRemove(ctx, v); err != nil {
			logWarning("Failed to remove %s: %v", name, err)
			failed++
			continue
		}
		logSuccess("Removed %s", name)
	}

	if failed > 0 {
		return errors.New(errors.ExitContainerFailed, fmt.Sprintf("%d container(s) could not be removed", failed))
	}
	return nil
}
