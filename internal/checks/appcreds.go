package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// AppCredsChecker monitors the expiration of secrets and certificates
// on Entra app registrations.
type AppCredsChecker struct{}

func (AppCredsChecker) Name() string { return config.SectionAppCreds }

func (AppCredsChecker) Service(item string) string { return "Entra app creds " + item }

func (AppCredsChecker) Parse(payload []byte) (Section, error) {
	s, err := section.ParseAppCreds(payload)
	if err != nil {
		return nil, err
	}
	return &appCredsSection{s}, nil
}

type appCredsSection struct {
	s *section.AppCreds
}

func (a *appCredsSection) Items() []string { return a.s.Keys() }

func (a *appCredsSection) Check(item string, params config.ServiceParams, now time.Time) (check.Outcome, bool) {
	app, ok := a.s.Get(item)
	if !ok {
		return check.Outcome{}, false
	}

	exclude, err := params.CompiledExcludes()
	if err != nil {
		return check.Outcome{State: check.StateUnknown, Summary: err.Error()}, true
	}

	credType := capitalize(app.CredType)

	items := make([]check.Expirable, 0, len(app.Credentials))
	var paragraphs []string
	for _, cred := range app.Credentials {
		// The displayName wins as description. Secrets without one
		// often carry a base64-encoded customKeyIdentifier instead;
		// certificates store their thumbprint there, which is not
		// reliably printable, so only secrets get the decode attempt.
		description := cred.Name
		if description == "" && cred.Identifier != "" && credType == "Secret" {
			description = check.DecodeIdentifier(cred.Identifier)
		}

		expires, err := check.ParseExpiration(cred.Expiration)
		if err != nil {
			return check.Outcome{
				State:   check.StateUnknown,
				Summary: fmt.Sprintf("%s %s has an unreadable expiration time", credType, cred.ID),
				Details: err.Error(),
			}, true
		}

		items = append(items, check.Expirable{
			ID:          cred.ID,
			Description: description,
			Expires:     expires,
		})
		paragraphs = append(paragraphs, strings.Join([]string{
			fmt.Sprintf("%s ID: %s", credType, cred.ID),
			fmt.Sprintf(" - Description: %s", orNotAvailable(description)),
			fmt.Sprintf(" - Expiration time: %s", check.Datetime(expires)),
		}, "\n"))
	}

	header := strings.Join([]string{
		fmt.Sprintf("App name: %s", app.Name),
		fmt.Sprintf("App ID: %s", app.AppID),
		fmt.Sprintf("Object ID: %s", app.ObjectID),
		"",
		fmt.Sprintf("Description: %s", orNotAvailable(app.Notes)),
	}, "\n")
	details := header + "\n\n" + strings.Join(paragraphs, "\n\n")

	earliest := check.Earliest(items, exclude)
	if earliest == nil {
		return check.Outcome{
			State:   check.StateOK,
			Summary: "All application credentials are excluded",
			Details: details,
		}, true
	}

	remaining := earliest.Expires.Sub(now)
	levels := params.CheckLevels()
	state, levelText := expiryResult(remaining, levels)

	summary := levelText + ", Expiration time: " + check.Datetime(earliest.Expires)
	if earliest.Description != "" {
		summary += ", Description: " + earliest.Description
	}

	return check.Outcome{
		State:   state,
		Summary: summary,
		Details: details,
		Metric:  validityMetric("entra_app_creds_remaining_validity", remaining, levels),
	}, true
}
