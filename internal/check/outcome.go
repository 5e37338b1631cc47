package check

import "time"

// Metric is one perf value attached to an outcome.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"` // seconds
	Warn  float64 `json:"warn,omitempty"`
	Crit  float64 `json:"crit,omitempty"`
}

// Outcome is the result of evaluating one service: a state, a one-line
// summary, and a multi-line detail block listing every sub-item.
type Outcome struct {
	State   State   `json:"state"`
	Summary string  `json:"summary"`
	Details string  `json:"details,omitempty"`
	Metric  *Metric `json:"metric,omitempty"`
}

// ServiceOutcome ties an outcome to the service it was evaluated for.
type ServiceOutcome struct {
	Section string  `json:"section"`
	Item    string  `json:"item,omitempty"`
	Service string  `json:"service"`
	Outcome Outcome `json:"outcome"`
}

// Snapshot is one evaluation cycle across all configured sections.
type Snapshot struct {
	At       time.Time         `json:"at"`
	Outcomes []ServiceOutcome  `json:"outcomes"`
	Errors   map[string]string `json:"errors,omitempty"` // section name -> error message
}

// WorstState returns the most severe state across the snapshot.
func (s Snapshot) WorstState() State {
	worst := StateOK
	for i := range s.Outcomes {
		worst = Worst(worst, s.Outcomes[i].Outcome.State)
	}
	return worst
}

// Counts returns the number of outcomes per state.
func (s Snapshot) Counts() map[State]int {
	counts := map[State]int{
		StateOK:      0,
		StateWarn:    0,
		StateCrit:    0,
		StateUnknown: 0,
	}
	for i := range s.Outcomes {
		counts[s.Outcomes[i].Outcome.State]++
	}
	return counts
}
