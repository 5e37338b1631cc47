package agent

import (
	"strings"

	"github.com/ppiankov/entrawatch/internal/config"
)

// BuildArgs returns the argv for invoking the agent subcommand with
// the given configuration. The client secret never appears here; only
// the name of the environment variable holding it is passed.
func BuildArgs(cfg *config.Config) []string {
	args := []string{
		"agent",
		"--tenant-id", cfg.Tenant.TenantID,
		"--app-id", cfg.Tenant.AppID,
		"--app-secret-env", cfg.Tenant.SecretEnvName(),
		"--services", strings.Join(cfg.EnabledServices(), ","),
		"--timeout", cfg.Timeout.String(),
	}
	if cfg.Proxy != "" {
		args = append(args, "--proxy", cfg.Proxy)
	}
	return args
}
