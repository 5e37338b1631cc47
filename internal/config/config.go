// Package config holds entrawatch runtime configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/entrawatch/internal/check"
)

// Section names as emitted by the agent envelope.
const (
	SectionAppCreds = "entra_app_creds"
	SectionAppProxy = "entra_app_proxy_certs"
	SectionVPNCert  = "entra_ca_vpn_cert"
	SectionSAML     = "entra_saml_certs"
	SectionSync     = "entra_sync"
)

// AllServices lists every collectable section.
var AllServices = []string{
	SectionAppCreds,
	SectionVPNCert,
	SectionSync,
	SectionSAML,
	SectionAppProxy,
}

var guidRe = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// LevelsSpec is a warn/crit threshold pair in config. Whether the pair
// is a lower or an upper bound is owned by the check that consumes it.
type LevelsSpec struct {
	Warn time.Duration `yaml:"warn"`
	Crit time.Duration `yaml:"crit"`
}

// ServiceParams are the per-service evaluation options.
type ServiceParams struct {
	Levels  *LevelsSpec `yaml:"levels"`  // nil = no levels, always OK
	Exclude []string    `yaml:"exclude"` // prefix-matched regex patterns
}

// CheckLevels converts the configured pair for the evaluator.
func (p ServiceParams) CheckLevels() *check.Levels {
	if p.Levels == nil {
		return nil
	}
	return &check.Levels{Warn: p.Levels.Warn, Crit: p.Levels.Crit}
}

// CompiledExcludes compiles the exclusion patterns.
func (p ServiceParams) CompiledExcludes() ([]*regexp.Regexp, error) {
	return check.CompileExcludes(p.Exclude)
}

// TenantConfig identifies the Entra tenant and the app registration the
// agent authenticates as. The client secret is read from the named
// environment variable so it never lands in config files or argv.
type TenantConfig struct {
	TenantID     string `yaml:"tenantId"`
	AppID        string `yaml:"appId"`
	AppSecretEnv string `yaml:"appSecretEnv"` // default ENTRAWATCH_APP_SECRET
}

// SecretEnvName returns the environment variable holding the secret.
func (t TenantConfig) SecretEnvName() string {
	if t.AppSecretEnv == "" {
		return "ENTRAWATCH_APP_SECRET"
	}
	return t.AppSecretEnv
}

// Secret resolves the client secret from the environment.
func (t TenantConfig) Secret() (string, error) {
	name := t.SecretEnvName()
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("client secret environment variable %s is empty", name)
	}
	return v, nil
}

// Config holds entrawatch runtime configuration.
type Config struct {
	Tenant       TenantConfig  `yaml:"tenant"`
	Services     []string      `yaml:"services"`     // empty = all
	Timeout      time.Duration `yaml:"timeout"`      // per Graph request, default 10s
	Proxy        string        `yaml:"proxy"`        // URL, "FROM_ENVIRONMENT" or "NO_PROXY"
	ListenAddr   string        `yaml:"listenAddr"`   // default ":8080"
	MetricsPath  string        `yaml:"metricsPath"`  // default "/metrics"
	RefreshEvery time.Duration `yaml:"refreshEvery"` // default 5m
	HistoryDB    string        `yaml:"historyDB"`    // empty = disabled

	AppCreds  ServiceParams `yaml:"appCreds"`
	AppProxy  ServiceParams `yaml:"appProxy"`
	VPNCert   ServiceParams `yaml:"vpnCert"`
	SAMLCerts ServiceParams `yaml:"samlCerts"`
	Sync      ServiceParams `yaml:"sync"`

	Notifications NotificationConfig `yaml:"notifications"`
}

// WebhookConfig is one notification webhook endpoint.
type WebhookConfig struct {
	URL  string `yaml:"url"`
	Type string `yaml:"type"` // "slack" or "" for a generic JSON webhook
}

// NotificationConfig controls webhook alerting in serve mode.
type NotificationConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
	States   []string        `yaml:"states"`   // default: crit+warn
	Cooldown time.Duration   `yaml:"cooldown"` // default: 1h
}

// Defaults returns a Config with the stock thresholds: 14d/5d before
// credential or certificate expiry, 1h/3h of sync staleness.
func Defaults() *Config {
	expiry := func() *LevelsSpec {
		return &LevelsSpec{Warn: 14 * 24 * time.Hour, Crit: 5 * 24 * time.Hour}
	}
	return &Config{
		Timeout:      10 * time.Second,
		ListenAddr:   ":8080",
		MetricsPath:  "/metrics",
		RefreshEvery: 5 * time.Minute,
		AppCreds:     ServiceParams{Levels: expiry()},
		AppProxy:     ServiceParams{Levels: expiry()},
		VPNCert:      ServiceParams{Levels: expiry()},
		SAMLCerts:    ServiceParams{Levels: expiry()},
		Sync:         ServiceParams{Levels: &LevelsSpec{Warn: time.Hour, Crit: 3 * time.Hour}},
	}
}

// Load reads a YAML config file and merges with defaults.
func Load(path string) (*Config, error) {
	c := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return c, nil
}

// Validate checks that the config values are sane.
func (c *Config) Validate() error {
	if c.Tenant.TenantID != "" && !guidRe.MatchString(c.Tenant.TenantID) {
		return fmt.Errorf("tenant.tenantId must be a 36-character GUID, got %q", c.Tenant.TenantID)
	}
	if c.Tenant.AppID != "" && !guidRe.MatchString(c.Tenant.AppID) {
		return fmt.Errorf("tenant.appId must be a 36-character GUID, got %q", c.Tenant.AppID)
	}
	if c.Timeout < 3*time.Second || c.Timeout > 600*time.Second {
		return fmt.Errorf("timeout must be between 3s and 600s, got %s", c.Timeout)
	}
	if c.RefreshEvery < 30*time.Second {
		return fmt.Errorf("refreshEvery must be at least 30s, got %s", c.RefreshEvery)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listenAddr must not be empty")
	}
	for _, svc := range c.Services {
		if !knownService(svc) {
			return fmt.Errorf("unknown service %q", svc)
		}
	}

	// Expiry levels are lower bounds: crit must sit below warn.
	for name, p := range map[string]ServiceParams{
		"appCreds": c.AppCreds, "appProxy": c.AppProxy,
		"vpnCert": c.VPNCert, "samlCerts": c.SAMLCerts,
	} {
		if p.Levels != nil && p.Levels.Crit >= p.Levels.Warn {
			return fmt.Errorf("%s: crit (%s) must be less than warn (%s)", name, p.Levels.Crit, p.Levels.Warn)
		}
		if _, err := p.CompiledExcludes(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	// Sync levels are upper bounds: warn must sit below crit.
	if l := c.Sync.Levels; l != nil && l.Warn >= l.Crit {
		return fmt.Errorf("sync: warn (%s) must be less than crit (%s)", l.Warn, l.Crit)
	}
	return nil
}

// EnabledServices returns the configured service list, or all services
// when none are configured.
func (c *Config) EnabledServices() []string {
	if len(c.Services) == 0 {
		return AllServices
	}
	return c.Services
}

// ParamsFor returns the evaluation options for a section name.
func (c *Config) ParamsFor(sectionName string) ServiceParams {
	switch sectionName {
	case SectionAppCreds:
		return c.AppCreds
	case SectionAppProxy:
		return c.AppProxy
	case SectionVPNCert:
		return c.VPNCert
	case SectionSAML:
		return c.SAMLCerts
	case SectionSync:
		return c.Sync
	default:
		return ServiceParams{}
	}
}

func knownService(name string) bool {
	for _, s := range AllServices {
		if s == name {
			return true
		}
	}
	return false
}
