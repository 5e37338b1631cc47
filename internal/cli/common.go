package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/entrawatch/internal/agent"
	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/checks"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/telemetry"
)

// registerTenantFlags adds the flags shared by every command that may
// talk to the Graph API.
func registerTenantFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file")
	cmd.Flags().String("tenant-id", "", "Entra tenant ID (overrides config)")
	cmd.Flags().String("app-id", "", "App registration client ID (overrides config)")
	cmd.Flags().String("app-secret-env", "", "Environment variable holding the client secret")
	cmd.Flags().StringSlice("services", nil, "Services to collect (default: all)")
	cmd.Flags().Duration("timeout", 0, "Per-request Graph API timeout (overrides config)")
	cmd.Flags().String("proxy", "", "Proxy URL, FROM_ENVIRONMENT or NO_PROXY (overrides config)")
}

// loadConfig builds the effective config from defaults, the optional
// config file, and flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg := config.Defaults()
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	if v, _ := cmd.Flags().GetString("tenant-id"); v != "" { //nolint:errcheck // flag registered above
		cfg.Tenant.TenantID = v
	}
	if v, _ := cmd.Flags().GetString("app-id"); v != "" { //nolint:errcheck // flag registered above
		cfg.Tenant.AppID = v
	}
	if v, _ := cmd.Flags().GetString("app-secret-env"); v != "" { //nolint:errcheck // flag registered above
		cfg.Tenant.AppSecretEnv = v
	}
	if v, _ := cmd.Flags().GetStringSlice("services"); len(v) > 0 { //nolint:errcheck // flag registered above
		cfg.Services = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 { //nolint:errcheck // flag registered above
		cfg.Timeout = v
	}
	if v, _ := cmd.Flags().GetString("proxy"); v != "" { //nolint:errcheck // flag registered above
		cfg.Proxy = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// requireTenant checks that the config identifies a tenant to collect from.
func requireTenant(cfg *config.Config) error {
	if cfg.Tenant.TenantID == "" || cfg.Tenant.AppID == "" {
		return fmt.Errorf("tenant-id and app-id are required (set them in the config file or via flags)")
	}
	return nil
}

// collectEnvelope runs a live Graph collection for the enabled services.
func collectEnvelope(cmd *cobra.Command, cfg *config.Config) (*agent.Envelope, error) {
	if err := requireTenant(cfg); err != nil {
		return nil, err
	}

	otelEndpoint, _ := cmd.Flags().GetString("otel-endpoint") //nolint:errcheck // persistent flag on root
	tracer, tracerShutdown, tracerErr := telemetry.InitTracer(cmd.Context(), otelEndpoint, "entrawatch", version)
	if tracerErr != nil {
		slog.Warn("initializing tracer", "err", tracerErr)
	} else {
		defer tracerShutdown(context.Background()) //nolint:errcheck // best-effort flush
	}

	var opts []agent.Option
	if tracer != nil {
		opts = append(opts, agent.WithTracer(tracer))
	}
	client, err := agent.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return client.Collect(cmd.Context(), cfg.EnabledServices()), nil
}

// loadEnvelope reads an agent envelope from a file ("-" for stdin), or
// collects live from the Graph API when no input is given.
func loadEnvelope(cmd *cobra.Command, cfg *config.Config) (*agent.Envelope, error) {
	input, _ := cmd.Flags().GetString("input") //nolint:errcheck // flag registered by caller
	if input == "" {
		return collectEnvelope(cmd, cfg)
	}

	var r io.Reader
	if input == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("opening envelope: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only file
		r = f
	}

	var env agent.Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	return &env, nil
}

// evaluateEnvelope runs the checkers over the envelope sections and
// carries the agent's per-service collection errors into the snapshot.
func evaluateEnvelope(env *agent.Envelope, cfg *config.Config) check.Snapshot {
	snap := checks.Evaluate(env.Sections, cfg, time.Now().UTC())
	for svc, msg := range env.Errors {
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[svc] = msg
	}
	return snap
}
