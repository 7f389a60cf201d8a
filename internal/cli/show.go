package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(commandContext(cmd))
			if err != nil {
				return err
			}
			defer svc.Close()

			d, ok := svc.Details(args[0])
			if !ok {
				return fmt.Errorf("product %q not found", args[0])
			}
			if asJSON {
				data, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal product: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Printf("%s (%s)\n", d.Name, d.ID)
			cmd.Printf("  Category: %s\n", d.Category)
			if d.Brand != "" {
				cmd.Printf("  Brand:    %s\n", d.Brand)
			}
			cmd.Printf("  Price:    %.2f %s\n", d.Price, d.Currency)
			stock := "out of stock"
			if d.InStock {
				stock = fmt.Sprintf("%d in stock", d.StockQuantity)
			}
			cmd.Printf("  Stock:    %s\n", stock)
			if d.Description != "" {
				cmd.Printf("\n  %s\n", d.Description)
			}
			if len(d.Attributes) > 0 {
				keys := make([]string, 0, len(d.Attributes))
				for k := range d.Attributes {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				cmd.Println()
				for _, k := range keys {
					cmd.Printf("  %s: %s\n", k, d.Attributes[k].String())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the product as JSON")
	return cmd
}
