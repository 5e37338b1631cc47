package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/entrawatch/internal/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate services and exit non-zero on problems",
	Long: `Collect (or read) an agent envelope, evaluate every service against
the configured thresholds, and exit with a monitoring-style code.
Designed for cron jobs and CI pipelines — no TUI, just
collect → evaluate → exit code.

Exit codes:
  0  All services OK
  1  Warnings (credentials expiring within the warn threshold)
  2  Critical (credentials expiring within the crit threshold or expired)
  3  Unknown state or collection errors`,
	Example: `  # Evaluate a live tenant
  export ENTRAWATCH_APP_SECRET=...
  entrawatch check --tenant-id <guid> --app-id <guid>

  # Evaluate a stored envelope
  entrawatch check --input envelope.json

  # Pipe from the agent
  entrawatch agent --config config.yaml | entrawatch check --input -

  # JSON output for pipeline parsing
  entrawatch check --config config.yaml -o json

  # Quiet mode — exit code only
  entrawatch check --config config.yaml --quiet`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	registerTenantFlags(checkCmd)
	checkCmd.Flags().String("input", "", "Read the agent envelope from a file (- for stdin) instead of collecting")
	checkCmd.Flags().StringP("output", "o", "", "Output format: json, table (default: table)")
	checkCmd.Flags().BoolP("quiet", "q", false, "Suppress output, exit code only")
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	outputFlag, _ := cmd.Flags().GetString("output") //nolint:errcheck // flag registered above
	quiet, _ := cmd.Flags().GetBool("quiet")         //nolint:errcheck // flag registered above

	if outputFlag != "" && outputFlag != "json" && outputFlag != "table" {
		return fmt.Errorf("invalid --output value %q: must be json or table", outputFlag)
	}

	if !quiet {
		switch outputFlag {
		case "json":
			if err := monitor.WriteJSON(cmd.OutOrStdout(), snap, exitCode); err != nil {
				return fmt.Errorf("writing JSON output: %w", err)
			}
		default:
			fmt.Fprint(cmd.OutOrStdout(), monitor.PlainText(snap))
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode) //nolint:gocritic // nonzero-exit path; nothing left to defer
	}
	return nil
}
