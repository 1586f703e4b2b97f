package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marqo-ai/compat-runner/internal/app"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the in-process compatibility cases",
	Long: `Lists the registered compatibility cases. With --from_version and
--to_version only the cases selected for that version pair are shown:
prepare selects cases whose minimum version is at most the from version,
test additionally selects cases declared for a version at most the to
version.`,
	Args: cobra.NoArgs,
	RunE: runCases,
}

var casesFlags struct {
	from  string
	to    string
	phase string
}

func init() {
	casesCmd.Flags().StringVar(&casesFlags.from, "from_version", "", "Filter for this from version")
	casesCmd.Flags().StringVar(&casesFlags.to, "to_version", "", "Filter for this to version")
	casesCmd.Flags().StringVar(&casesFlags.phase, "phase", "test", "Phase to filter for: prepare or test")
	rootCmd.AddCommand(casesCmd)
}

func runCases(cmd *cobra.Command, args []string) error {
	cs, err := phaseCases(app.Default.Registry, casesFlags.phase, casesFlags.from, casesFlags.to)
	if err != nil {
		return err
	}

	if len(cs) == 0 {
		logInfo("No compatibility cases match")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFROM\tVERSION\tPHASES\tDESCRIPTION")
	fmt.Fprintln(w, "----\t----\t-------\t------\t-----------")

	for _, c := range cs {
		var phases []string
		if c.Prepare != nil {
			phases = append(phases, "prepare")
		}
		if c.Test != nil {
			phases = append(phases, "test")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.MinVersion(), c.DeclaredVersion(), strings.Join(phases, ","), c.Description)
	}

	return w.Flush()
}
