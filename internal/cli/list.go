package cli

import (
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int
	listOrder  string
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records by upload time",
	Long: `List records from the time-ordered index.

Examples:
  photoctl list --limit 5                 # five most recent
  photoctl list --order asc --offset 20   # oldest first, third page
  photoctl list --search iphone           # keyword over names and tags`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", entity.DefaultListLimit, "page size, at most 100")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "rank offset")
	listCmd.Flags().StringVar(&listOrder, "order", string(entity.OrderDesc), "asc or desc")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive keyword")
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	var (
		records []*entity.ImageRecord
		err     error
	)

	if listSearch != "" {
		records, err = queryUseCase.Search(ctx, listSearch, listLimit)
	} else {
		records, err = queryUseCase.List(ctx, entity.ListOptions{
			Limit:  listLimit,
			Offset: listOffset,
			Order:  entity.Order(listOrder),
		})
	}
	if err != nil {
		return err
	}
	if records == nil {
		records = []*entity.ImageRecord{}
	}

	return printJSON(cmd.OutOrStdout(), records)
}
