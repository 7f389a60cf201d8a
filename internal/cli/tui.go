package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"productrag/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive terminal UI",
		Long: `Launch the interactive product search UI.

Controls:
  Enter  - Search
  Tab    - Cycle category filter
  ↑/↓    - Previous / next result
  Ctrl+C - Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(commandContext(cmd))
			if err != nil {
				return err
			}
			defer svc.Close()
			m := tui.New(svc, svc.Describe(), a.cfg.Retriever.TopK)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
