package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/entrawatch/internal/checks"
)

// discoveredItem is one monitorable service found in the envelope.
type discoveredItem struct {
	Section string `json:"section"`
	Item    string `json:"item"`
	Service string `json:"service"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List the monitorable services in a tenant",
	Long: `Collect (or read) an agent envelope and list every service an item
would be created for: one per app registration credential type, one per
application proxy, one for the VPN gateway certificate, one per SAML
application, and one for directory sync.

Useful to see what "entrawatch check" will evaluate before wiring it
into a scheduler.`,
	Example: `  # Discover against a live tenant
  entrawatch discover --tenant-id <guid> --app-id <guid>

  # Discover from a stored envelope
  entrawatch discover --input envelope.json -o json`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	registerTenantFlags(discoverCmd)
	discoverCmd.Flags().String("input", "", "Read the agent envelope from a file (- for stdin) instead of collecting")
	discoverCmd.Flags().StringP("output", "o", "", "Output format: json, table (default: table)")
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	env, err := loadEnvelope(cmd, cfg)
	if err != nil {
		return err
	}

	var items []discoveredItem
	for _, name := range cfg.EnabledServices() {
		checker, ok := checks.ByName(name)
		if !ok {
			continue
		}
		payload, ok := env.Sections[name]
		if !ok {
			continue
		}
		parsed, err := checker.Parse(payload)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", name, err)
			continue
		}
		for _, item := range parsed.Items() {
			items = append(items, discoveredItem{
				Section: name,
				Item:    item,
				Service: checker.Service(item),
			})
		}
	}

	outputFlag, _ := cmd.Flags().GetString("output") //nolint:errcheck // flag registered above
	switch outputFlag {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("writing JSON output: %w", err)
		}
	case "", "table":
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No services discovered.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-36s %s\n", "SECTION", "ITEM", "SERVICE")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %-36s %s\n", it.Section, it.Item, it.Service)
		}
	default:
		return fmt.Errorf("invalid --output value %q: must be json or table", outputFlag)
	}
	return nil
}
