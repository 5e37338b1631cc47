package section

import (
	"encoding/json"
	"fmt"
)

// AppProxy is one application-proxy app and its published certificate.
type AppProxy struct {
	Name            string `json:"app_name"`
	AppID           string `json:"app_appid"`
	ObjectID        string `json:"app_id"`
	Notes           string `json:"app_notes"`
	InternalURL     string `json:"internal_url"`
	ExternalURL     string `json:"external_url"`
	CertThumbprint  string `json:"cert_thumbprint"`
	CertSubjectName string `json:"cert_subject_name"`
	CertExpiration  string `json:"cert_expiration"`
}

// AppProxies is the parsed application-proxy certificates section.
type AppProxies struct {
	keys []string
	apps map[string]AppProxy
}

// ParseAppProxies decodes the app proxy certificates payload.
func ParseAppProxies(payload []byte) (*AppProxies, error) {
	var items []AppProxy
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decoding app proxy certificates section: %w", err)
	}

	s := &AppProxies{apps: make(map[string]AppProxy, len(items))}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := uniqueName(seen, item.Name, item.ObjectID)
		s.keys = append(s.keys, key)
		s.apps[key] = item
	}
	return s, nil
}

// Keys returns the synthesized service keys in input order.
func (s *AppProxies) Keys() []string { return s.keys }

// Get returns the app for a key, reporting whether it exists.
func (s *AppProxies) Get(key string) (AppProxy, bool) {
	app, ok := s.apps[key]
	return app, ok
}
