package monitor

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
)

func testOutcome(state check.State, service, summary string) check.ServiceOutcome {
	return check.ServiceOutcome{
		Section: "entra_app_creds",
		Service: service,
		Outcome: check.Outcome{State: state, Summary: summary},
	}
}

func TestNewModel_EmptySnapshot(t *testing.T) {
	snap := check.Snapshot{At: time.Now()}
	m := NewModel(snap, "contoso.onmicrosoft.com")

	if len(m.outcomes) != 0 {
		t.Errorf("expected 0 outcomes, got %d", len(m.outcomes))
	}
	if m.tenant != "contoso.onmicrosoft.com" {
		t.Errorf("tenant = %q", m.tenant)
	}
}

func TestNewModel_SortsOutcomes(t *testing.T) {
	snap := check.Snapshot{
		At: time.Now(),
		Outcomes: []check.ServiceOutcome{
			testOutcome(check.StateOK, "ok svc", "fine"),
			testOutcome(check.StateCrit, "crit svc", "expiring"),
			testOutcome(check.StateUnknown, "unknown svc", "no data"),
			testOutcome(check.StateWarn, "warn svc", "soonish"),
		},
	}
	m := NewModel(snap, "")

	wantOrder := []check.State{check.StateCrit, check.StateUnknown, check.StateWarn, check.StateOK}
	for i, want := range wantOrder {
		if got := m.outcomes[i].Outcome.State; got != want {
			t.Errorf("outcome %d state = %v, want %v", i, got, want)
		}
	}
}

func TestViewDoesNotPanic(t *testing.T) {
	snap := check.Snapshot{
		At: time.Now(),
		Outcomes: []check.ServiceOutcome{
			{
				Section: "entra_app_creds",
				Item:    "Billing API - Secret",
				Service: "Entra app creds Billing API - Secret",
				Outcome: check.Outcome{
					State:   check.StateCrit,
					Summary: "Expiration time: in 1 day",
					Details: "App name: Billing API\nApp ID: app-1",
					Metric:  &check.Metric{Name: "entra_app_creds_remaining_validity", Value: 86400},
				},
			},
			testOutcome(check.StateUnknown, "Entra connect sync", "Entra connect/cloud sync not active"),
		},
	}

	m := NewModel(snap, "contoso")
	output := m.View()
	if output == "" {
		t.Error("View() returned empty string")
	}
}

func TestPlainText(t *testing.T) {
	snap := check.Snapshot{
		At: time.Now(),
		Outcomes: []check.ServiceOutcome{
			testOutcome(check.StateWarn, "Entra app creds Billing API - Secret", "Expiration time: in 10 days"),
		},
		Errors: map[string]string{"entra_saml_certs": "forbidden"},
	}

	out := PlainText(snap)
	if !strings.Contains(out, "SERVICE") {
		t.Error("PlainText should contain header row")
	}
	if !strings.Contains(out, "Entra app creds Billing API - Secret") {
		t.Errorf("PlainText should contain service name, got:\n%s", out)
	}
	if !strings.Contains(out, "entra_saml_certs") || !strings.Contains(out, "forbidden") {
		t.Errorf("PlainText should list collection errors, got:\n%s", out)
	}
}

func TestPlainText_Empty(t *testing.T) {
	snap := check.Snapshot{At: time.Now()}
	out := PlainText(snap)
	if out != "No services." {
		t.Errorf("PlainText(empty) = %q, want %q", out, "No services.")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		want string
		max  int
	}{
		{"short", "short", 10},
		{"this is a long string", "this is...", 10},
		{"exact10chr", "exact10chr", 10},
	}
	for _, tt := range tests {
		got := truncate(tt.s, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}
