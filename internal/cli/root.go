package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talon-assistant/talent-catalog/pkg/assistant"
	"github.com/talon-assistant/talent-catalog/pkg/config"
	"github.com/talon-assistant/talent-catalog/pkg/vault"
)

const vaultService = "talon"

var (
	cfgFile  string
	logLevel string

	v        *viper.Viper
	settings *config.Settings
	logger   *log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "talon",
	Short:         "talon is a voice and text assistant built from talents",
	Long:          `Talon routes each command to the talent best able to handle it: todos, timers, snippets, prices, containers, repositories, files and more.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", config.Version, config.Commit, config.BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v = config.NewViper(cfgFile)
		s, err := config.Load(v)
		if err != nil {
			return err
		}
		settings = s
		if logLevel != "" {
			settings.Log.Level = logLevel
		}
		logger = config.NewLogger(os.Stderr, settings.Log.Level, settings.Log.Format)
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.talon.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
}

func openVault() *vault.Vault {
	return vault.Open(vaultService, config.SecretsPath())
}

// newAssistant builds the host from the loaded settings. The settings file,
// when one was read, is watched for changes while serving.
func newAssistant() *assistant.Assistant {
	return assistant.New(assistant.Options{
		Settings:     settings,
		Secrets:      openVault(),
		SettingsFile: v.ConfigFileUsed(),
		Reload:       func() (*config.Settings, error) { return config.Load(v) },
		Logger:       logger,
	})
}
