package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askTimeout time.Duration

var askCmd = &cobra.Command{
	Use:   "ask <command...>",
	Short: "Run a single command through the talents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newAssistant()
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
		defer cancel()

		reply := a.Handle(ctx, strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if reply.Talent != "" {
			fmt.Fprintln(out, color.HiBlackString("[%s]", reply.Talent))
		}
		if reply.Success {
			fmt.Fprintln(out, reply.Text)
		} else {
			fmt.Fprintln(out, color.YellowString(reply.Text))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "give up after this long")
	rootCmd.AddCommand(askCmd)
}
