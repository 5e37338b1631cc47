// Package check implements the shared evaluation core: outcome states,
// warn/crit level classification, earliest-expiry selection with
// exclusion filters, and stable rendering of timestamps and timespans.
package check

import "encoding/json"

// State classifies one evaluated service.
type State int

const (
	StateOK State = iota
	StateWarn
	StateCrit
	StateUnknown
)

// String returns the monitoring-style state marker.
func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarn:
		return "WARN"
	case StateCrit:
		return "CRIT"
	default:
		return "UNKNOWN"
	}
}

// ParseState is the inverse of String. Unrecognized markers map to
// StateUnknown.
func ParseState(s string) State {
	switch s {
	case "OK":
		return StateOK
	case "WARN":
		return StateWarn
	case "CRIT":
		return StateCrit
	default:
		return StateUnknown
	}
}

// MarshalJSON renders the state marker rather than the numeric rank.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var marker string
	if err := json.Unmarshal(data, &marker); err != nil {
		return err
	}
	*s = ParseState(marker)
	return nil
}

// severityRank orders states for worst-of combination: CRIT outranks
// UNKNOWN, which outranks WARN.
func severityRank(s State) int {
	switch s {
	case StateOK:
		return 0
	case StateWarn:
		return 1
	case StateUnknown:
		return 2
	default:
		return 3
	}
}

// Worst returns the more severe of two states.
func Worst(a, b State) State {
	if severityRank(b) > severityRank(a) {
		return b
	}
	return a
}
