package cli

import "github.com/spf13/cobra"

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(commandContext(cmd))
			if err != nil {
				return err
			}
			defer svc.Close()
			for _, c := range svc.Categories() {
				cmd.Println(c)
			}
			return nil
		},
	}
}
