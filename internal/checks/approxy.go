package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// AppProxyChecker monitors the certificate published on Entra
// application-proxy apps.
type AppProxyChecker struct{}

func (AppProxyChecker) Name() string { return config.SectionAppProxy }

func (AppProxyChecker) Service(item string) string { return "Entra app proxy certificate " + item }

func (AppProxyChecker) Parse(payload []byte) (Section, error) {
	s, err := section.ParseAppProxies(payload)
	if err != nil {
		return nil, err
	}
	return &appProxySection{s}, nil
}

type appProxySection struct {
	s *section.AppProxies
}

func (a *appProxySection) Items() []string { return a.s.Keys() }

func (a *appProxySection) Check(item string, params config.ServiceParams, now time.Time) (check.Outcome, bool) {
	app, ok := a.s.Get(item)
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
			fmt.Sprintf("Internal URL: %s", app.InternalURL),
			fmt.Sprintf("External URL: %s", app.ExternalURL),
			"",
			"Certificate details",
			fmt.Sprintf(" - Subject name: %s", app.CertSubjectName),
			fmt.Sprintf(" - Thumbprint: %s", app.CertThumbprint),
			fmt.Sprintf(" - Expiration time: %s", expiration),
		}, "\n")
	}

	expires, err := check.ParseExpiration(app.CertExpiration)
	if err != nil {
		// App proxy certs always carry an expiration; an unreadable one
		// is a data defect, not a tolerated gap.
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
		Metric:  validityMetric("entra_app_proxy_cert_remaining_validity", remaining, levels),
	}, true
}
