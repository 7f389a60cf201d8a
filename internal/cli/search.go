package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		limit    int
		category string
		hybrid   bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog",
		Long: `Ranks catalog products by similarity to the query.
With --hybrid, keyword overlap is blended into the vector score.

The default hash embedder matches surface features, not meaning, so pure
vector ranking can put unrelated products first. For keyword queries use
--hybrid, e.g. "wireless headphones" ranks prod-001 first only in hybrid mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.Retriever.TopK
			}
			if hybrid {
				a.cfg.Retriever.Mode = "hybrid"
			}
			ctx := commandContext(cmd)
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			records, err := svc.Search(ctx, args[0], limit, category)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if asJSON {
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal results: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			cmd.Print(svc.Summary(records))
			if len(records) == 0 {
				cmd.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of results")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only return products in this category")
	cmd.Flags().BoolVar(&hybrid, "hybrid", false, "blend keyword overlap into the ranking")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}
