package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/talon-assistant/talent-catalog/pkg/assistant"
	"github.com/talon-assistant/talent-catalog/pkg/talent"
)

var talentsCmd = &cobra.Command{
	Use:   "talents",
	Short: "List talents in routing order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newAssistant()
		defer a.Close()
		printTalents(cmd.OutOrStdout(), a)
		return nil
	},
}

var talentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a talent's keywords and resolved settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newAssistant()
		defer a.Close()

		for _, t := range a.Talents() {
			if t.Info().Name == args[0] {
				cfg, _ := a.Config(args[0])
				printTalent(cmd.OutOrStdout(), t, cfg)
				return nil
			}
		}
		return errors.Errorf("no talent named %q", args[0])
	},
}

func init() {
	talentsCmd.AddCommand(talentsShowCmd)
	rootCmd.AddCommand(talentsCmd)
}

func printTalents(w io.Writer, a *assistant.Assistant) {
	talents := a.Talents()
	width := 0
	for _, t := range talents {
		width = max(width, runewidth.StringWidth(t.Info().Name))
	}
	for _, t := range talents {
		info := t.Info()
		fmt.Fprintf(w, "%s  %3d  %s\n", color.CyanString(runewidth.FillRight(info.Name, width)), info.Priority, info.Description)
	}

	fmt.Fprintln(w)
	for _, c := range a.Capabilities() {
		if c.Available {
			fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), c.Name)
		} else {
			fmt.Fprintf(w, "%s %s: %s\n", color.RedString("✗"), c.Name, c.Remedy)
		}
	}
}

func printTalent(w io.Writer, t talent.Talent, cfg talent.Config) {
	info := t.Info()
	fmt.Fprintf(w, "%s (priority %d)\n%s\n\n", color.CyanString(info.Name), info.Priority, info.Description)
	fmt.Fprintf(w, "%s %s\n", color.YellowString("Keywords:"), strings.Join(info.Keywords, ", "))
	if len(info.Exclusions) > 0 {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("Exclusions:"), strings.Join(info.Exclusions, ", "))
	}

	fields := t.ConfigSchema().Fields
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", color.YellowString("Settings:"))
	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.Key))
	}
	for _, f := range fields {
		val := cast.ToString(cfg[f.Key])
		if f.Type == talent.TypePassword && val != "" {
			val = "********"
		}
		fmt.Fprintf(w, "  %s  %s  %s\n", runewidth.FillRight(f.Key, width), color.CyanString(val), color.HiBlackString(f.Label))
	}
}
