package cli

import "github.com/spf13/cobra"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection counters",
	Long:  `Print total images, total size and averages. Counter read failures are reported in the error field.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd.OutOrStdout(), queryUseCase.Stats(commandContext(cmd)))
	},
}
