package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage secrets in the OS keychain",
	Long: `Secrets back password fields and channel tokens. A talent's password field is
read from talents.<talent>.<field>, for example talents.github_talent.access_token.`,
}

var vaultSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a secret in the vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openVault().Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Secret '%s' set successfully.\n", args[0])
		return nil
	},
}

var vaultGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a secret from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		val, err := openVault().Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", color.YellowString(args[0]), color.CyanString(val))
		return nil
	},
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored secret keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := openVault().List()
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No secrets stored.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+k)
		}
		return nil
	},
}

func init() {
	vaultCmd.AddCommand(vaultSetCmd, vaultGetCmd, vaultListCmd)
	rootCmd.AddCommand(vaultCmd)
}
