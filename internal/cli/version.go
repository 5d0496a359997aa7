package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talon-assistant/talent-catalog/pkg/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of talon",
	// Printing the version needs no settings.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short-commit")
		if short {
			fmt.Fprint(cmd.OutOrStdout(), config.Commit)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
	},
}

func init() {
	versionCmd.Flags().Bool("short-commit", false, "Print only the short commit SHA")
	rootCmd.AddCommand(versionCmd)
}
