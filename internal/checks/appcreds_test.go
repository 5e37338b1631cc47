package checks

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func expiryLevels() *config.LevelsSpec {
	return &config.LevelsSpec{Warn: 14 * 24 * time.Hour, Crit: 5 * 24 * time.Hour}
}

func appCredsPayload(creds string) []byte {
	return []byte(fmt.Sprintf(`[
		{
			"app_name": "Portal",
			"app_appid": "11111111-0000-0000-0000-000000000000",
			"app_id": "22222222-0000-0000-0000-000000000000",
			"app_notes": "customer portal",
			"cred_type": "Secret",
			"app_creds": [%s]
		}
	]`, creds))
}

func ts(t time.Time) string { return t.Format(time.RFC3339) }

func TestAppCreds_EarliestDrivesState(t *testing.T) {
	// A expires in 1 day, B in 10: A wins and 1d <= crit(5d) is critical.
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": "short", "cred_expiration": %q},
		 {"cred_id": "B", "cred_name": "long", "cred_expiration": %q}`,
		ts(testNow.Add(24*time.Hour)), ts(testNow.Add(10*24*time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, ok := s.Check("Portal - Secret", config.ServiceParams{Levels: expiryLevels()}, testNow)
	if !ok {
		t.Fatal("item not found")
	}
	if outcome.State != check.StateCrit {
		t.Errorf("state = %v, want CRIT", outcome.State)
	}
	if !strings.Contains(outcome.Summary, "Remaining: 1 day") {
		t.Errorf("summary = %q", outcome.Summary)
	}
	if !strings.Contains(outcome.Summary, "Description: short") {
		t.Errorf("summary = %q", outcome.Summary)
	}
	// both credentials listed in the details, in input order
	if !strings.Contains(outcome.Details, "Secret ID: A") || !strings.Contains(outcome.Details, "Secret ID: B") {
		t.Errorf("details = %q", outcome.Details)
	}
	if strings.Index(outcome.Details, "Secret ID: A") > strings.Index(outcome.Details, "Secret ID: B") {
		t.Error("details not in input order")
	}
	if outcome.Metric == nil || outcome.Metric.Name != "entra_app_creds_remaining_validity" {
		t.Fatalf("metric = %+v", outcome.Metric)
	}
	if got, want := outcome.Metric.Value, (24 * time.Hour).Seconds(); got != want {
		t.Errorf("metric value = %v, want %v", got, want)
	}
}

func TestAppCreds_ExclusionShiftsToWarning(t *testing.T) {
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": "short", "cred_expiration": %q},
		 {"cred_id": "B", "cred_name": "long", "cred_expiration": %q}`,
		ts(testNow.Add(24*time.Hour)), ts(testNow.Add(10*24*time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	params := config.ServiceParams{Levels: expiryLevels(), Exclude: []string{"short$"}}
	outcome, ok := s.Check("Portal - Secret", params, testNow)
	if !ok {
		t.Fatal("item not found")
	}
	// B remains: 10d is below warn(14d) but above crit(5d).
	if outcome.State != check.StateWarn {
		t.Errorf("state = %v, want WARN", outcome.State)
	}
	if !strings.Contains(outcome.Summary, "Description: long") {
		t.Errorf("summary = %q", outcome.Summary)
	}
	// the excluded credential still shows up in the details
	if !strings.Contains(outcome.Details, "Secret ID: A") {
		t.Errorf("excluded credential missing from details: %q", outcome.Details)
	}
}

func TestAppCreds_AllExcluded(t *testing.T) {
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": "CWAP_AuthSecret", "cred_expiration": %q}`,
		ts(testNow.Add(time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	params := config.ServiceParams{Levels: expiryLevels(), Exclude: []string{"CWAP_AuthSecret$"}}
	outcome, ok := s.Check("Portal - Secret", params, testNow)
	if !ok {
		t.Fatal("item not found")
	}
	if outcome.State != check.StateOK {
		t.Errorf("state = %v, want OK", outcome.State)
	}
	if outcome.Summary != "All application credentials are excluded" {
		t.Errorf("summary = %q", outcome.Summary)
	}
	if outcome.Metric != nil {
		t.Errorf("metric = %+v, want nil", outcome.Metric)
	}
}

func TestAppCreds_SecretIdentifierDecoded(t *testing.T) {
	// no display name; identifier is base64 for "CWAP_AuthSecret"
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": null, "cred_identifier": "Q1dBUF9BdXRoU2VjcmV0", "cred_expiration": %q}`,
		ts(testNow.Add(30*24*time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, _ := s.Check("Portal - Secret", config.ServiceParams{Levels: expiryLevels()}, testNow)
	if !strings.Contains(outcome.Summary, "Description: CWAP_AuthSecret") {
		t.Errorf("summary = %q", outcome.Summary)
	}
}

func TestAppCreds_UndecodableIdentifierAbsorbed(t *testing.T) {
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": null, "cred_identifier": "not base64!", "cred_expiration": %q}`,
		ts(testNow.Add(30*24*time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, _ := s.Check("Portal - Secret", config.ServiceParams{Levels: expiryLevels()}, testNow)
	if outcome.State != check.StateOK {
		t.Errorf("state = %v, want OK", outcome.State)
	}
	if strings.Contains(outcome.Summary, "Description:") {
		t.Errorf("summary should carry no description: %q", outcome.Summary)
	}
	if !strings.Contains(outcome.Details, "Description: (Not available)") {
		t.Errorf("details = %q", outcome.Details)
	}
}

func TestAppCreds_Expired(t *testing.T) {
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": "old", "cred_expiration": %q}`,
		ts(testNow.Add(-48*time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, _ := s.Check("Portal - Secret", config.ServiceParams{Levels: expiryLevels()}, testNow)
	if outcome.State != check.StateCrit {
		t.Errorf("state = %v, want CRIT", outcome.State)
	}
	if !strings.Contains(outcome.Summary, "Expired: 2 days ago") {
		t.Errorf("summary = %q", outcome.Summary)
	}
	if outcome.Metric.Value != 0 {
		t.Errorf("metric value = %v, want clamped 0", outcome.Metric.Value)
	}
}

func TestAppCreds_NoLevelsAlwaysOK(t *testing.T) {
	payload := appCredsPayload(fmt.Sprintf(
		`{"cred_id": "A", "cred_name": "old", "cred_expiration": %q}`,
		ts(testNow.Add(-time.Hour))))

	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, _ := s.Check("Portal - Secret", config.ServiceParams{}, testNow)
	if outcome.State != check.StateOK {
		t.Errorf("state = %v, want OK without levels", outcome.State)
	}
}

func TestAppCreds_UnknownItemSkipped(t *testing.T) {
	s, err := AppCredsChecker{}.Parse([]byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Check("Gone - Secret", config.ServiceParams{}, testNow); ok {
		t.Error("expected no outcome for unknown item")
	}
}

func TestAppCreds_UnreadableExpiration(t *testing.T) {
	payload := appCredsPayload(`{"cred_id": "A", "cred_name": "x", "cred_expiration": "soon"}`)
	s, err := AppCredsChecker{}.Parse(payload)
	if err != nil {
		t.Fatal(err)
	}
	outcome, ok := s.Check("Portal - Secret", config.ServiceParams{Levels: expiryLevels()}, testNow)
	if !ok {
		t.Fatal("item not found")
	}
	if outcome.State != check.StateUnknown {
		t.Errorf("state = %v, want UNKNOWN", outcome.State)
	}
}
