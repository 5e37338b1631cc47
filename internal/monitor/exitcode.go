// Package monitor provides TUI rendering and exit-code logic for entrawatch.
package monitor

import "github.com/ppiankov/entrawatch/internal/check"

// ExitCode returns a process exit code based on the worst outcome in a
// snapshot, following the monitoring convention:
//
//	0 = all services OK
//	1 = warnings exist
//	2 = critical problems
//	3 = unknown state or collection errors
func ExitCode(snap check.Snapshot) int {
	worst := snap.WorstState()
	if len(snap.Errors) > 0 && worst != check.StateCrit {
		return 3
	}
	switch worst {
	case check.StateOK:
		return 0
	case check.StateWarn:
		return 1
	case check.StateCrit:
		return 2
	default:
		return 3
	}
}
