// Package checks turns agent section payloads into service outcomes.
//
// Each checker covers one Entra domain: it parses the domain's payload,
// enumerates the monitorable items, and evaluates one item's health
// against the configured thresholds. The expiry selection and level
// classification live in the check package; this package owns the
// per-domain field mapping and detail rendering.
package checks

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
)

const notAvailable = "(Not available)"

// Checker is one monitored Entra domain.
type Checker interface {
	// Name is the section name in the agent envelope.
	Name() string
	// Service renders the service display name for an item.
	Service(item string) string
	// Parse decodes the section payload.
	Parse(payload []byte) (Section, error)
}

// Section is one parsed payload, ready for discovery and evaluation.
type Section interface {
	// Items returns the discoverable item keys in input order.
	Items() []string
	// Check evaluates one item. The second return is false when the
	// item is not present in the section, a routine condition after
	// re-discovery rather than an error.
	Check(item string, params config.ServiceParams, now time.Time) (check.Outcome, bool)
}

// All returns every checker, in envelope section order.
func All() []Checker {
	return []Checker{
		AppCredsChecker{},
		VPNCertChecker{},
		SyncChecker{},
		SAMLCertsChecker{},
		AppProxyChecker{},
	}
}

// ByName returns the checker for a section name.
func ByName(name string) (Checker, bool) {
	for _, c := range All() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Evaluate parses and checks every enabled section in the envelope and
// returns one snapshot. Sections missing from the envelope are skipped;
// undecodable sections are recorded as errors without aborting the rest.
func Evaluate(sections map[string]json.RawMessage, cfg *config.Config, now time.Time) check.Snapshot {
	snap := check.Snapshot{At: now}
	for _, name := range cfg.EnabledServices() {
		checker, ok := ByName(name)
		if !ok {
			continue
		}
		payload, ok := sections[name]
		if !ok {
			continue
		}
		parsed, err := checker.Parse(payload)
		if err != nil {
			if snap.Errors == nil {
				snap.Errors = make(map[string]string)
			}
			snap.Errors[name] = err.Error()
			continue
		}
		params := cfg.ParamsFor(name)
		for _, item := range parsed.Items() {
			outcome, ok := parsed.Check(item, params, now)
			if !ok {
				continue
			}
			snap.Outcomes = append(snap.Outcomes, check.ServiceOutcome{
				Section: name,
				Item:    item,
				Service: checker.Service(item),
				Outcome: outcome,
			})
		}
	}
	return snap
}

// validityMetric builds the remaining-validity metric for an expiry
// check. The value is clamped at zero once expired so the graphed
// series never goes negative.
func validityMetric(name string, remaining time.Duration, levels *check.Levels) *check.Metric {
	m := &check.Metric{Name: name, Value: remaining.Seconds()}
	if m.Value < 0 {
		m.Value = 0
	}
	if levels != nil {
		m.Warn = levels.Warn.Seconds()
		m.Crit = levels.Crit.Seconds()
	}
	return m
}

// expiryResult classifies a remaining-validity timespan and renders the
// level line, switching wording once the item has expired.
func expiryResult(remaining time.Duration, levels *check.Levels) (check.State, string) {
	if remaining > 0 {
		return check.CheckLevels(remaining, levels, check.DirLower, "Remaining", check.Timespan)
	}
	return check.CheckLevels(remaining, levels, check.DirLower, "Expired", check.Ago)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// orNotAvailable substitutes the placeholder for empty values.
func orNotAvailable(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
