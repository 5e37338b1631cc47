package check

import (
	"encoding/json"
	"testing"
)

func TestWorstState(t *testing.T) {
	tests := []struct {
		name string
		a, b State
		want State
	}{
		{"ok vs warn", StateOK, StateWarn, StateWarn},
		{"warn vs unknown", StateWarn, StateUnknown, StateUnknown},
		{"unknown vs crit", StateUnknown, StateCrit, StateCrit},
		{"crit vs unknown", StateCrit, StateUnknown, StateCrit},
		{"ok vs ok", StateOK, StateOK, StateOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.a, tt.b); got != tt.want {
				t.Errorf("Worst(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestParseState_RoundTrip(t *testing.T) {
	for _, s := range []State{StateOK, StateWarn, StateCrit, StateUnknown} {
		if got := ParseState(s.String()); got != s {
			t.Errorf("ParseState(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if got := ParseState("bogus"); got != StateUnknown {
		t.Errorf("ParseState(bogus) = %v, want UNKNOWN", got)
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(StateCrit)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"CRIT"` {
		t.Errorf("marshal = %s, want \"CRIT\"", data)
	}

	var s State
	if err := json.Unmarshal([]byte(`"WARN"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != StateWarn {
		t.Errorf("unmarshal = %v, want WARN", s)
	}
}
