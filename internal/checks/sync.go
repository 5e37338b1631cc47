package checks

import (
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// SyncChecker monitors the staleness of Entra connect/cloud sync. This
// is the one check where the threshold direction inverts: the value is
// elapsed time since the last sync, alerting when it grows.
type SyncChecker struct{}

func (SyncChecker) Name() string { return config.SectionSync }

func (SyncChecker) Service(string) string { return "Entra connect sync" }

func (SyncChecker) Parse(payload []byte) (Section, error) {
	s, err := section.ParseSyncStatus(payload)
	if err != nil {
		return nil, err
	}
	return syncSection{s}, nil
}

type syncSection struct {
	s *section.SyncStatus
}

func (syncSection) Items() []string { return []string{""} }

func (s syncSection) Check(_ string, params config.ServiceParams, now time.Time) (check.Outcome, bool) {
	if s.s.Enabled == nil || !*s.s.Enabled {
		return check.Outcome{
			State:   check.StateUnknown,
			Summary: "Entra connect/cloud sync not active",
		}, true
	}

	last, err := check.ParseExpiration(s.s.LastSync)
	if err != nil {
		return check.Outcome{
			State:   check.StateUnknown,
			Summary: "Last sync time is unreadable",
			Details: err.Error(),
		}, true
	}

	elapsed := now.Sub(last)
	levels := params.CheckLevels()
	state, levelText := check.CheckLevels(elapsed, levels, check.DirUpper, "Last sync", check.Ago)

	m := &check.Metric{Name: "entra_sync_elapsed_time", Value: elapsed.Seconds()}
	if levels != nil {
		m.Warn = levels.Warn.Seconds()
		m.Crit = levels.Crit.Seconds()
	}

	return check.Outcome{
		State:   state,
		Summary: levelText + ", Sync time: " + check.Datetime(last),
		Metric:  m,
	}, true
}
