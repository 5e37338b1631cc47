package check

import (
	"testing"
	"time"
)

func TestEarliest_PicksMinimum(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	items := []Expirable{
		{ID: "B", Description: "second", Expires: now.Add(10 * 24 * time.Hour)},
		{ID: "A", Description: "first", Expires: now.Add(24 * time.Hour)},
		{ID: "C", Description: "third", Expires: now.Add(30 * 24 * time.Hour)},
	}

	got := Earliest(items, nil)
	if got == nil || got.ID != "A" {
		t.Fatalf("earliest = %+v, want A", got)
	}
}

func TestEarliest_TieKeepsFirst(t *testing.T) {
	exp := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	items := []Expirable{
		{ID: "first", Expires: exp},
		{ID: "second", Expires: exp},
	}
	got := Earliest(items, nil)
	if got == nil || got.ID != "first" {
		t.Fatalf("earliest = %+v, want first", got)
	}
}

func TestEarliest_ExclusionShiftsSelection(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	items := []Expirable{
		{ID: "A", Description: "CWAP_AuthSecret", Expires: now.Add(24 * time.Hour)},
		{ID: "B", Description: "rotation secret", Expires: now.Add(10 * 24 * time.Hour)},
	}

	exclude, err := CompileExcludes([]string{"CWAP_AuthSecret$"})
	if err != nil {
		t.Fatal(err)
	}
	got := Earliest(items, exclude)
	if got == nil || got.ID != "B" {
		t.Fatalf("earliest = %+v, want B", got)
	}
}

func TestEarliest_AllExcluded(t *testing.T) {
	items := []Expirable{
		{ID: "A", Description: "ignored one"},
		{ID: "B", Description: "ignored two"},
	}
	exclude, err := CompileExcludes([]string{"ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if got := Earliest(items, exclude); got != nil {
		t.Fatalf("earliest = %+v, want nil", got)
	}
}

func TestExcluded_PrefixSemantics(t *testing.T) {
	exclude, err := CompileExcludes([]string{"CN=service"})
	if err != nil {
		t.Fatal(err)
	}

	// match at start of the description
	if !Excluded("CN=service.prod.powerva.microsoft.com", exclude) {
		t.Error("expected prefix match")
	}
	// a match in the middle must not exclude
	if Excluded("backup CN=service", exclude) {
		t.Error("unanchored pattern matched mid-string")
	}
}

func TestCompileExcludes_Invalid(t *testing.T) {
	if _, err := CompileExcludes([]string{"("}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestDecodeIdentifier(t *testing.T) {
	if got := DecodeIdentifier("Q1dBUF9BdXRoU2VjcmV0"); got != "CWAP_AuthSecret" {
		t.Errorf("decoded = %q, want CWAP_AuthSecret", got)
	}
	// not base64: silently absorbed
	if got := DecodeIdentifier("239527ECF41F3FCFADBF68F93689FD4EBE19A3B0!"); got != "" {
		t.Errorf("decoded = %q, want empty", got)
	}
	// valid base64 but not utf-8
	if got := DecodeIdentifier("/w=="); got != "" {
		t.Errorf("decoded = %q, want empty", got)
	}
}

func TestParseExpiration_RoundTrip(t *testing.T) {
	in := time.Date(2026, 12, 24, 18, 30, 0, 0, time.UTC)
	out, err := ParseExpiration(in.Format(time.RFC3339))
	if err != nil {
		t.Fatal(err)
	}
	if d := out.Sub(in); d > time.Second || d < -time.Second {
		t.Errorf("round-trip drift %v", d)
	}

	if _, err := ParseExpiration("not-a-timestamp"); err == nil {
		t.Fatal("expected parse error")
	}
}
