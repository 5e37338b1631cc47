package section

import (
	"encoding/json"
	"fmt"
)

// VPNCert is one certificate on the Conditional Access VPN service
// principal.
type VPNCert struct {
	ID         string `json:"cert_id"`
	Name       string `json:"cert_name"`
	Identifier string `json:"cert_identifier"`
	Expiration string `json:"cert_expiration"`
}

// VPNApp is a service principal matching the Conditional Access VPN
// gateway name. More than one entry means the name is ambiguous and the
// check cannot decide which principal carries the VPN certificates.
type VPNApp struct {
	Name     string    `json:"app_name"`
	AppID    string    `json:"app_appid"`
	ObjectID string    `json:"app_id"`
	Certs    []VPNCert `json:"app_certs"`
}

// ParseVPNCerts decodes the Conditional Access VPN certificate payload.
// The section stays a list: the duplicate-name precondition is decided
// at check time over the whole candidate set.
func ParseVPNCerts(payload []byte) ([]VPNApp, error) {
	var items []VPNApp
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decoding CA VPN certificate section: %w", err)
	}
	return items, nil
}
