package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileRepair bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare object store, records, index and counters",
	Long: `Report dangling index entries, unindexed records, orphan objects and
counter drift. With --repair the index and counters are fixed and orphan
objects older than RECONCILER_GRACE_PERIOD are deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		report, err := reconcileUseCase.Reconcile(commandContext(cmd), reconcileRepair)
		if err != nil {
			return err
		}

		if err = printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}

		if !report.Clean() && !report.Repaired {
			return fmt.Errorf("index is inconsistent, rerun with --repair")
		}

		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileRepair, "repair", false, "fix what was found")
}
