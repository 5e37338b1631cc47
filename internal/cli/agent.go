package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Collect Entra sections and print the agent envelope",
	Long: `Authenticate against the Microsoft Graph API and collect the raw
section payloads for every enabled service: app registration
credentials, application proxy certificates, the Conditional Access VPN
certificate, SAML token signing certificates, and directory sync status.

The envelope is printed as JSON on stdout, ready to be piped into
"entrawatch check --input -" or stored for later evaluation. The client
secret is read from the environment variable named by --app-secret-env
(default ENTRAWATCH_APP_SECRET); it is never accepted as a flag.`,
	Example: `  # Collect everything
  export ENTRAWATCH_APP_SECRET=...
  entrawatch agent --tenant-id <guid> --app-id <guid>

  # Collect a subset through a proxy
  entrawatch agent --config /etc/entrawatch/config.yaml \
    --services entra_app_creds,entra_sync --proxy http://proxy.local:3128

  # Collect and evaluate in one pipeline
  entrawatch agent --config config.yaml | entrawatch check --input -`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
	registerTenantFlags(agentCmd)
	agentCmd.Flags().Bool("pretty", false, "Indent the JSON output")
}

func runAgent(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	env, err := collectEnvelope(cmd, cfg)
	if err != nil {
		return err
	}

	for svc, msg := range env.Errors {
		slog.Warn("section collection failed", "service", svc, "err", msg)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty { //nolint:errcheck // flag registered above
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("writing envelope: %w", err)
	}
	return nil
}
