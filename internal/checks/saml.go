package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// SAMLCertsChecker monitors the token-signing certificate on service
// principals with SAML single sign-on.
type SAMLCertsChecker struct{}

func (SAMLCertsChecker) Name() string { return config.SectionSAML }

func (SAMLCertsChecker) Service(item string) string { return "Entra SAML certificate " + item }

func (SAMLCertsChecker) Parse(payload []byte) (Section, error) {
	s, err := section.ParseSAMLApps(payload)
	if err != nil {
		return nil, err
	}
	return &samlSection{s}, nil
}

type samlSection struct {
	s *section.SAMLApps
}

func (s *samlSection) Items() []string { return s.s.Keys() }

func (s *samlSection) Check(item string, params config.ServiceParams, now time.Time) (check.Outcome, bool) {
	app, ok := s.s.Get(item)
	if !ok {
		return check.Outcome{}, false
	}

	details := func(expiration string) string {
		return strings.Join([]string{
			fmt.Sprintf("App name: %s", app.Name),
			fmt.Sprintf("App ID: %s", app.AppID),
			fmt.Sprintf("Object ID: %s", app.ObjectID),
			"",
			fmt.Sprintf("Description: %s", orNotAvailable(app.Notes)),
			"",
			"Certificate details",
			fmt.Sprintf(" - Thumbprint: %s", orNotAvailable(app.CertThumbprint)),
			fmt.Sprintf(" - Expiration time: %s", expiration),
		}, "\n")
	}

	// The signing key end date comes from the Graph beta API and can be
	// legitimately absent. Report indeterminate instead of computing a
	// validity from nothing.
	if app.CertExpiration == "" {
		return check.Outcome{
			State: check.StateUnknown,
			Summary: "No certificate expiration time found. The value of " +
				"preferredTokenSigningKeyEndDateTime is empty.",
			Details: details(notAvailable),
		}, true
	}

	expires, err := check.ParseExpiration(app.CertExpiration)
	if err != nil {
		return check.Outcome{
			State:   check.StateUnknown,
			Summary: "Certificate expiration time is unreadable",
			Details: err.Error() + "\n\n" + details(notAvailable),
		}, true
	}

	remaining := expires.Sub(now)
	levels := params.CheckLevels()
	state, levelText := expiryResult(remaining, levels)

	return check.Outcome{
		State:   state,
		Summary: levelText + ", Expiration time: " + check.Datetime(expires),
		Details: details(check.Datetime(expires)),
		Metric:  validityMetric("entra_saml_certs_remaining_validity", remaining, levels),
	}, true
}
