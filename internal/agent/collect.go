package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// vpnPrincipalName is the display name of the service principal that
// holds the Conditional Access VPN gateway certificates.
const vpnPrincipalName = "VPN Server"

// Envelope is the agent output: one JSON section payload per collected
// service, plus per-service collection errors.
type Envelope struct {
	CollectedAt time.Time                  `json:"collected_at"`
	Sections    map[string]json.RawMessage `json:"sections"`
	Errors      map[string]string          `json:"errors,omitempty"`
}

// Collect gathers the requested services from the Graph API. A failing
// service is recorded in Errors and does not abort the others.
func (c *Client) Collect(ctx context.Context, services []string) *Envelope {
	env := &Envelope{
		CollectedAt: time.Now().UTC(),
		Sections:    make(map[string]json.RawMessage),
		Errors:      make(map[string]string),
	}
	for _, svc := range services {
		payload, err := c.collectService(ctx, svc)
		if err != nil {
			env.Errors[svc] = err.Error()
			continue
		}
		env.Sections[svc] = payload
	}
	return env
}

func (c *Client) collectService(parent context.Context, svc string) (raw json.RawMessage, err error) {
	ctx, span := c.tracer.Start(parent, "agent.collect",
		trace.WithAttributes(attribute.String("entrawatch.service", svc)))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var payload any
	switch svc {
	case config.SectionAppCreds:
		payload, err = c.collectAppCreds(ctx)
	case config.SectionAppProxy:
		payload, err = c.collectAppProxies(ctx)
	case config.SectionVPNCert:
		payload, err = c.collectVPNCerts(ctx)
	case config.SectionSAML:
		payload, err = c.collectSAMLApps(ctx)
	case config.SectionSync:
		payload, err = c.collectSyncStatus(ctx)
	default:
		return nil, fmt.Errorf("unknown service %q", svc)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

type graphCredential struct {
	KeyID               string `json:"keyId"`
	DisplayName         string `json:"displayName"`
	CustomKeyIdentifier string `json:"customKeyIdentifier"`
	EndDateTime         string `json:"endDateTime"`
}

type graphApplication struct {
	ID                  string            `json:"id"`
	AppID               string            `json:"appId"`
	DisplayName         string            `json:"displayName"`
	Notes               string            `json:"notes"`
	PasswordCredentials []graphCredential `json:"passwordCredentials"`
	KeyCredentials      []graphCredential `json:"keyCredentials"`
}

// collectAppCreds lists app registrations and splits each into one
// record per credential type, so secrets and certificates become
// separate monitored items.
func (c *Client) collectAppCreds(ctx context.Context) ([]section.AppRegistration, error) {
	values, err := c.listAll(ctx, "/v1.0/applications?$select=id,appId,displayName,notes,passwordCredentials,keyCredentials&$top=999")
	if err != nil {
		return nil, err
	}
	apps := make([]section.AppRegistration, 0, len(values))
	for _, raw := range values {
		var app graphApplication
		if err := json.Unmarshal(raw, &app); err != nil {
			return nil, fmt.Errorf("decoding application: %w", err)
		}
		if len(app.PasswordCredentials) > 0 {
			apps = append(apps, appRegistration(app, "Secret", app.PasswordCredentials))
		}
		if len(app.KeyCredentials) > 0 {
			apps = append(apps, appRegistration(app, "Certificate", app.KeyCredentials))
		}
	}
	return apps, nil
}

func appRegistration(app graphApplication, credType string, creds []graphCredential) section.AppRegistration {
	reg := section.AppRegistration{
		Name:     app.DisplayName,
		AppID:    app.AppID,
		ObjectID: app.ID,
		Notes:    app.Notes,
		CredType: credType,
	}
	for _, cred := range creds {
		reg.Credentials = append(reg.Credentials, section.AppCredential{
			ID:         cred.KeyID,
			Name:       cred.DisplayName,
			Identifier: cred.CustomKeyIdentifier,
			Expiration: cred.EndDateTime,
		})
	}
	return reg
}

type graphOnPremPublishing struct {
	InternalURL string `json:"internalUrl"`
	ExternalURL string `json:"externalUrl"`
	Certificate struct {
		Thumbprint  string `json:"thumbprint"`
		SubjectName string `json:"subjectName"`
		ExpiryDate  string `json:"expiryDate"`
	} `json:"verifiedCustomDomainCertificatesMetadata"`
}

// collectAppProxies fetches the on-premises publishing settings of
// every application and keeps those with a custom domain certificate.
// The publishing resource only exists on the beta endpoint.
func (c *Client) collectAppProxies(ctx context.Context) ([]section.AppProxy, error) {
	values, err := c.listAll(ctx, "/beta/applications?$select=id,appId,displayName,notes&$top=999")
	if err != nil {
		return nil, err
	}
	var proxies []section.AppProxy
	for _, raw := range values {
		var app graphApplication
		if err := json.Unmarshal(raw, &app); err != nil {
			return nil, fmt.Errorf("decoding application: %w", err)
		}
		body, err := c.get(ctx, "/beta/applications/"+url.PathEscape(app.ID)+"/onPremisesPublishing")
		if err != nil {
			if NotFound(err) {
				continue
			}
			return nil, err
		}
		var pub graphOnPremPublishing
		if err := json.Unmarshal(body, &pub); err != nil {
			return nil, fmt.Errorf("decoding publishing settings for %s: %w", app.ID, err)
		}
		if pub.Certificate.ExpiryDate == "" {
			continue
		}
		proxies = append(proxies, section.AppProxy{
			Name:            app.DisplayName,
			AppID:           app.AppID,
			ObjectID:        app.ID,
			Notes:           app.Notes,
			InternalURL:     pub.InternalURL,
			ExternalURL:     pub.ExternalURL,
			CertThumbprint:  pub.Certificate.Thumbprint,
			CertSubjectName: pub.Certificate.SubjectName,
			CertExpiration:  pub.Certificate.ExpiryDate,
		})
	}
	return proxies, nil
}

type graphServicePrincipal struct {
	ID                string            `json:"id"`
	AppID             string            `json:"appId"`
	DisplayName       string            `json:"displayName"`
	Notes             string            `json:"notes"`
	KeyCredentials    []graphCredential `json:"keyCredentials"`
	SigningKeyEnd     string            `json:"preferredTokenSigningKeyEndDateTime"`
	SigningThumbprint string            `json:"preferredTokenSigningKeyThumbprint"`
}

// collectVPNCerts lists the service principals named after the
// Conditional Access VPN gateway. Duplicates are passed through so the
// check can flag the ambiguity.
func (c *Client) collectVPNCerts(ctx context.Context) ([]section.VPNApp, error) {
	filter := url.QueryEscape(fmt.Sprintf("displayName eq '%s'", vpnPrincipalName))
	values, err := c.listAll(ctx, "/v1.0/servicePrincipals?$filter="+filter+"&$select=id,appId,displayName,keyCredentials")
	if err != nil {
		return nil, err
	}
	apps := make([]section.VPNApp, 0, len(values))
	for _, raw := range values {
		var sp graphServicePrincipal
		if err := json.Unmarshal(raw, &sp); err != nil {
			return nil, fmt.Errorf("decoding service principal: %w", err)
		}
		app := section.VPNApp{
			Name:     sp.DisplayName,
			AppID:    sp.AppID,
			ObjectID: sp.ID,
		}
		for _, cred := range sp.KeyCredentials {
			app.Certs = append(app.Certs, section.VPNCert{
				ID:         cred.KeyID,
				Name:       cred.DisplayName,
				Identifier: cred.CustomKeyIdentifier,
				Expiration: cred.EndDateTime,
			})
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// collectSAMLApps lists enabled service principals configured for SAML
// single sign-on. The preferred signing key fields are beta-only.
func (c *Client) collectSAMLApps(ctx context.Context) ([]section.SAMLApp, error) {
	filter := url.QueryEscape("accountEnabled eq true and preferredSingleSignOnMode eq 'saml'")
	values, err := c.listAll(ctx, "/beta/servicePrincipals?$filter="+filter+
		"&$select=id,appId,displayName,notes,preferredTokenSigningKeyEndDateTime,preferredTokenSigningKeyThumbprint&$count=true",
	)
	if err != nil {
		return nil, err
	}
	apps := make([]section.SAMLApp, 0, len(values))
	for _, raw := range values {
		var sp graphServicePrincipal
		if err := json.Unmarshal(raw, &sp); err != nil {
			return nil, fmt.Errorf("decoding service principal: %w", err)
		}
		apps = append(apps, section.SAMLApp{
			Name:           sp.DisplayName,
			AppID:          sp.AppID,
			ObjectID:       sp.ID,
			Notes:          sp.Notes,
			CertThumbprint: sp.SigningThumbprint,
			CertExpiration: sp.SigningKeyEnd,
		})
	}
	return apps, nil
}

// collectSyncStatus reads the tenant-wide on-premises directory sync
// state from the organization singleton.
func (c *Client) collectSyncStatus(ctx context.Context) (*section.SyncStatus, error) {
	values, err := c.listAll(ctx, "/v1.0/organization?$select=onPremisesSyncEnabled,onPremisesLastSyncDateTime")
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("organization resource returned no entries")
	}
	var org struct {
		SyncEnabled  *bool  `json:"onPremisesSyncEnabled"`
		LastSyncTime string `json:"onPremisesLastSyncDateTime"`
	}
	if err := json.Unmarshal(values[0], &org); err != nil {
		return nil, fmt.Errorf("decoding organization: %w", err)
	}
	return &section.SyncStatus{Enabled: org.SyncEnabled, LastSync: org.LastSyncTime}, nil
}
