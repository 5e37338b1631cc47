package check

import (
	"fmt"
	"time"
)

// Direction controls which side of the level pair alerts.
type Direction int

const (
	// DirLower alerts when the value drops below warn/crit, used for
	// remaining validity.
	DirLower Direction = iota
	// DirUpper alerts when the value rises to warn/crit or beyond, used
	// for sync staleness.
	DirUpper
)

// Levels is a warn/crit threshold pair. A nil *Levels means no levels
// are configured and classification is always OK.
type Levels struct {
	Warn time.Duration
	Crit time.Duration
}

// Classify compares a value against the levels in the given direction.
func (l *Levels) Classify(value time.Duration, dir Direction) State {
	if l == nil {
		return StateOK
	}
	switch dir {
	case DirUpper:
		if value >= l.Crit {
			return StateCrit
		}
		if value >= l.Warn {
			return StateWarn
		}
	default:
		if value <= l.Crit {
			return StateCrit
		}
		if value <= l.Warn {
			return StateWarn
		}
	}
	return StateOK
}

// CheckLevels classifies value and renders a labeled, human-readable
// result line. Non-OK results carry the violated level pair, e.g.
// "Remaining: 4 days (warn/crit below 14 days/5 days)".
func CheckLevels(value time.Duration, levels *Levels, dir Direction, label string, render func(time.Duration) string) (State, string) {
	state := levels.Classify(value, dir)
	text := label + ": " + render(value)
	if state == StateOK {
		return state, text
	}
	word := "below"
	if dir == DirUpper {
		word = "at"
	}
	return state, fmt.Sprintf("%s (warn/crit %s %s/%s)", text, word, Timespan(levels.Warn), Timespan(levels.Crit))
}
