package section

import (
	"encoding/json"
	"fmt"
)

// AppCredential is one secret or certificate on an app registration.
type AppCredential struct {
	ID         string `json:"cred_id"`
	Name       string `json:"cred_name"`
	Identifier string `json:"cred_identifier"`
	Expiration string `json:"cred_expiration"`
}

// AppRegistration groups the credentials of one type (secrets or
// certificates) on one Entra app registration.
type AppRegistration struct {
	Name        string          `json:"app_name"`
	AppID       string          `json:"app_appid"`
	ObjectID    string          `json:"app_id"`
	Notes       string          `json:"app_notes"`
	CredType    string          `json:"cred_type"`
	Credentials []AppCredential `json:"app_creds"`
}

// AppCreds is the parsed app-registration credentials section. Insertion
// order is preserved for discovery and detail rendering.
type AppCreds struct {
	keys []string
	apps map[string]AppRegistration
}

// ParseAppCreds decodes the app credentials payload. The key combines
// the app name with the credential type, since one registration shows
// up once for its secrets and once for its certificates.
func ParseAppCreds(payload []byte) (*AppCreds, error) {
	var items []AppRegistration
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decoding app credentials section: %w", err)
	}

	s := &AppCreds{apps: make(map[string]AppRegistration, len(items))}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := uniqueName(seen, item.Name+" - "+item.CredType, item.ObjectID)
		s.keys = append(s.keys, key)
		s.apps[key] = item
	}
	return s, nil
}

// Keys returns the synthesized service keys in input order.
func (s *AppCreds) Keys() []string { return s.keys }

// Get returns the registration for a key, reporting whether it exists.
func (s *AppCreds) Get(key string) (AppRegistration, bool) {
	app, ok := s.apps[key]
	return app, ok
}
