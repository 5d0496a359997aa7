package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/talon-assistant/talent-catalog/pkg/history"
)

var (
	historyCount  int
	historySearch string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently handled commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHistory()
		if err != nil {
			return err
		}
		entries := h.Recent(historyCount)
		if historySearch != "" {
			entries = h.Search(historySearch)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
			return nil
		}
		for _, e := range entries {
			printEntry(cmd.OutOrStdout(), e)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the command history",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHistory()
		if err != nil {
			return err
		}
		n := h.Len()
		h.Clear()
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries.\n", n)
		return nil
	},
}

func openHistory() (*history.Log, error) {
	if settings.History.Limit <= 0 {
		return nil, errors.New("history is disabled; set history.limit to enable it")
	}
	return history.Open(settings.StorePath("history"), settings.History.Limit, logger), nil
}

func printEntry(w io.Writer, e history.Entry) {
	who := e.Platform
	if e.From != "" {
		who += " " + e.From
	}
	fmt.Fprintf(w, "%s %s %s\n", color.HiBlackString(e.At.Format("2006-01-02 15:04")), color.CyanString(who), e.Text)
	talent := e.Talent
	if talent == "" {
		talent = "fallback"
	}
	reply := e.Reply
	if !e.Success {
		reply = color.YellowString(reply)
	}
	fmt.Fprintf(w, "  %s %s\n", color.HiBlackString("["+talent+"]"), reply)
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "number", "n", 20, "number of entries to show (0 for all)")
	historyCmd.Flags().StringVar(&historySearch, "search", "", "only show entries containing this text")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
