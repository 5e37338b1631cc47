package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ppiankov/entrawatch/internal/monitor"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Show the tenant's credential health right now",
	Long: `Collect (or read) an agent envelope, evaluate every service, and
browse the results in an interactive terminal UI. Falls back to plain
table output when stdout is not a terminal or --plain is given.

Exit codes match "entrawatch check":
  0  All services OK
  1  Warnings exist
  2  Critical problems
  3  Unknown state or collection errors`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)
	registerTenantFlags(nowCmd)
	nowCmd.Flags().String("input", "", "Read the agent envelope from a file (- for stdin) instead of collecting")
	nowCmd.Flags().Bool("plain", false, "Plain table output, no TUI")
}

func runNow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	env, err := loadEnvelope(cmd, cfg)
	if err != nil {
		return err
	}

	snap := evaluateEnvelope(env, cfg)
	exitCode := monitor.ExitCode(snap)

	plain, _ := cmd.Flags().GetBool("plain") //nolint:errcheck // flag registered above
	if plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprint(cmd.OutOrStdout(), monitor.PlainText(snap))
	} else {
		model := monitor.NewModel(snap, cfg.Tenant.TenantID)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode) //nolint:gocritic // nonzero-exit path; nothing left to defer
	}
	return nil
}
