package section

import (
	"encoding/json"
	"fmt"
)

// SyncStatus is the directory-sync state of the tenant. Enabled is a
// pointer because the organization resource reports null when neither
// connect sync nor cloud sync was ever configured.
type SyncStatus struct {
	Enabled  *bool  `json:"sync_enabled"`
	LastSync string `json:"sync_last"`
}

// ParseSyncStatus decodes the directory-sync payload, a single object
// rather than a list.
func ParseSyncStatus(payload []byte) (*SyncStatus, error) {
	var s SyncStatus
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decoding sync status section: %w", err)
	}
	return &s, nil
}
