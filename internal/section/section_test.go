package section

import (
	"testing"
)

func TestParseAppCreds(t *testing.T) {
	payload := []byte(`[
		{
			"app_name": "App One",
			"app_appid": "11111111-0000-0000-0000-000000000000",
			"app_id": "22222222-0000-0000-0000-00000000abcd",
			"app_notes": "first app",
			"cred_type": "Secret",
			"app_creds": [
				{"cred_id": "c1", "cred_name": null, "cred_identifier": "Q1dBUF9BdXRoU2VjcmV0", "cred_expiration": "2026-01-01T00:00:00Z"}
			]
		},
		{
			"app_name": "App One",
			"app_appid": "11111111-0000-0000-0000-000000000000",
			"app_id": "22222222-0000-0000-0000-00000000abcd",
			"app_notes": null,
			"cred_type": "Certificate",
			"app_creds": []
		}
	]`)

	s, err := ParseAppCreds(payload)
	if err != nil {
		t.Fatal(err)
	}

	keys := s.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
	if keys[0] != "App One - Secret" {
		t.Errorf("keys[0] = %q, want %q", keys[0], "App One - Secret")
	}
	if keys[1] != "App One - Certificate" {
		t.Errorf("keys[1] = %q, want %q", keys[1], "App One - Certificate")
	}

	app, ok := s.Get("App One - Secret")
	if !ok {
		t.Fatal("missing App One - Secret")
	}
	if app.Notes != "first app" {
		t.Errorf("notes = %q, want %q", app.Notes, "first app")
	}
	if len(app.Credentials) != 1 {
		t.Fatalf("expected 1 credential, got %d", len(app.Credentials))
	}
	// null cred_name must decode to an empty string, not abort parsing
	if app.Credentials[0].Name != "" {
		t.Errorf("cred name = %q, want empty", app.Credentials[0].Name)
	}
}

func TestParseAppCreds_DuplicateKeys(t *testing.T) {
	payload := []byte(`[
		{"app_name": "App", "app_id": "00000000-0000-0000-0000-000000001111", "cred_type": "Secret", "app_creds": []},
		{"app_name": "App", "app_id": "00000000-0000-0000-0000-000000002222", "cred_type": "Secret", "app_creds": []},
		{"app_name": "App", "app_id": "00000000-0000-0000-0000-000000003333", "cred_type": "Secret", "app_creds": []}
	]`)

	s, err := ParseAppCreds(payload)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"App - Secret", "App - Secret 2222", "App - Secret 3333"}
	keys := s.Keys()
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(keys), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	for _, k := range keys {
		if _, ok := s.Get(k); !ok {
			t.Errorf("key %q not resolvable", k)
		}
	}
}

func TestParseAppCreds_InvalidJSON(t *testing.T) {
	if _, err := ParseAppCreds([]byte(`{not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseAppProxies_UniqueNames(t *testing.T) {
	payload := []byte(`[
		{"app_name": "Proxy App", "app_id": "00000000-0000-0000-0000-0000000aaaa1", "cert_expiration": "2026-01-01T00:00:00Z"},
		{"app_name": "Proxy App", "app_id": "00000000-0000-0000-0000-0000000bbbb2", "cert_expiration": "2026-02-01T00:00:00Z"}
	]`)

	s, err := ParseAppProxies(payload)
	if err != nil {
		t.Fatal(err)
	}
	keys := s.Keys()
	if keys[0] != "Proxy App" {
		t.Errorf("keys[0] = %q, want %q", keys[0], "Proxy App")
	}
	if keys[1] != "Proxy App bbb2" {
		t.Errorf("keys[1] = %q, want %q", keys[1], "Proxy App bbb2")
	}

	first, _ := s.Get("Proxy App")
	second, _ := s.Get("Proxy App bbb2")
	if first.CertExpiration == second.CertExpiration {
		t.Error("keys resolve to the same record")
	}
}

func TestParseVPNCerts(t *testing.T) {
	payload := []byte(`[
		{
			"app_name": "VPN Server",
			"app_appid": "11111111-0000-0000-0000-000000000000",
			"app_id": "22222222-0000-0000-0000-000000000000",
			"app_certs": [
				{"cert_id": "c1", "cert_name": "CN=Microsoft VPN root CA gen 1", "cert_identifier": "abc", "cert_expiration": "2027-01-01T00:00:00Z"}
			]
		}
	]`)

	apps, err := ParseVPNCerts(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 app, got %d", len(apps))
	}
	if len(apps[0].Certs) != 1 {
		t.Fatalf("expected 1 cert, got %d", len(apps[0].Certs))
	}
	if apps[0].Certs[0].Name != "CN=Microsoft VPN root CA gen 1" {
		t.Errorf("cert name = %q", apps[0].Certs[0].Name)
	}
}

func TestParseSAMLApps_MissingExpiration(t *testing.T) {
	payload := []byte(`[
		{"app_name": "SAML App", "app_id": "00000000-0000-0000-0000-000000000000", "cert_expiration": null, "cert_thumbprint": null}
	]`)

	s, err := ParseSAMLApps(payload)
	if err != nil {
		t.Fatal(err)
	}
	app, ok := s.Get("SAML App")
	if !ok {
		t.Fatal("missing SAML App")
	}
	if app.CertExpiration != "" {
		t.Errorf("expiration = %q, want empty", app.CertExpiration)
	}
}

func TestParseSyncStatus(t *testing.T) {
	s, err := ParseSyncStatus([]byte(`{"sync_enabled": true, "sync_last": "2026-08-31T10:00:00Z"}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled == nil || !*s.Enabled {
		t.Error("expected sync enabled")
	}
	if s.LastSync != "2026-08-31T10:00:00Z" {
		t.Errorf("lastSync = %q", s.LastSync)
	}

	s, err = ParseSyncStatus([]byte(`{"sync_enabled": null, "sync_last": null}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Enabled != nil {
		t.Error("expected nil enabled for null payload")
	}
}

func TestUniqueName_ShortID(t *testing.T) {
	seen := map[string]bool{"App": true}
	if got := uniqueName(seen, "App", "ab"); got != "App ab" {
		t.Errorf("got %q, want %q", got, "App ab")
	}
}

func TestUniqueName_SharedTailGrows(t *testing.T) {
	seen := make(map[string]bool)
	// Both IDs end in the same 4 characters.
	first := uniqueName(seen, "App", "00000000-0000-0000-0000-aaaaaaaa1234")
	second := uniqueName(seen, "App", "00000000-0000-0000-0000-bbbbbbbb1234")
	third := uniqueName(seen, "App", "00000000-0000-0000-0000-cccccccc1234")

	if first != "App" {
		t.Errorf("first = %q, want %q", first, "App")
	}
	if second != "App 1234" {
		t.Errorf("second = %q, want %q", second, "App 1234")
	}
	if third == second || third == first {
		t.Fatalf("third = %q collides with an earlier key", third)
	}
	if third != "App cccc1234" {
		t.Errorf("third = %q, want %q (longer tail of its own ID)", third, "App cccc1234")
	}
}
