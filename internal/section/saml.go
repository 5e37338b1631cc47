package section

import (
	"encoding/json"
	"fmt"
)

// SAMLApp is one service principal with SAML single sign-on and its
// token-signing certificate. The expiration can legitimately be empty
// because preferredTokenSigningKeyEndDateTime is only exposed through
// the Graph beta API.
type SAMLApp struct {
	Name           string `json:"app_name"`
	AppID          string `json:"app_appid"`
	ObjectID       string `json:"app_id"`
	Notes          string `json:"app_notes"`
	CertThumbprint string `json:"cert_thumbprint"`
	CertExpiration string `json:"cert_expiration"`
}

// SAMLApps is the parsed SAML certificates section.
type SAMLApps struct {
	keys []string
	apps map[string]SAMLApp
}

// ParseSAMLApps decodes the SAML certificates payload.
func ParseSAMLApps(payload []byte) (*SAMLApps, error) {
	var items []SAMLApp
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decoding SAML certificates section: %w", err)
	}

	s := &SAMLApps{apps: make(map[string]SAMLApp, len(items))}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := uniqueName(seen, item.Name, item.ObjectID)
		s.keys = append(s.keys, key)
		s.apps[key] = item
	}
	return s, nil
}

// Keys returns the synthesized service keys in input order.
func (s *SAMLApps) Keys() []string { return s.keys }

// Get returns the app for a key, reporting whether it exists.
func (s *SAMLApps) Get(key string) (SAMLApp, bool) {
	app, ok := s.apps[key]
	return app, ok
}
