package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer commands from Telegram, Discord and the local WebSocket",
	Long: `Serve starts every configured channel and keeps running until interrupted.
Channel tokens come from the settings file, TALON_* environment variables or the vault
(channels.telegram.token, channels.discord.token). Edits to the settings file are applied
to running talents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := newAssistant()
		defer a.Close()

		logger.Info("talon is listening", "talents", len(a.Talents()))
		return a.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
