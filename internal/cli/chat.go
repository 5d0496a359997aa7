package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/talon-assistant/talent-catalog/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newAssistant()
		defer a.Close()

		p := tea.NewProgram(tui.New(cmd.Context(), a.Handle), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return errors.Wrap(err, "chat")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
