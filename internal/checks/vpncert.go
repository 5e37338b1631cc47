package checks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
	"github.com/ppiankov/entrawatch/internal/section"
)

// VPNCertChecker monitors the certificates on the Conditional Access
// VPN service principal. The section is a singleton service: the agent
// queries by the gateway's display name, and that name is expected to
// be unique in the tenant.
type VPNCertChecker struct{}

func (VPNCertChecker) Name() string { return config.SectionVPNCert }

func (VPNCertChecker) Service(string) string { return "Entra CA VPN certificate" }

func (VPNCertChecker) Parse(payload []byte) (Section, error) {
	apps, err := section.ParseVPNCerts(payload)
	if err != nil {
		return nil, err
	}
	return vpnCertSection(apps), nil
}

type vpnCertSection []section.VPNApp

func (v vpnCertSection) Items() []string {
	if len(v) == 0 {
		return nil
	}
	return []string{""}
}

func (v vpnCertSection) Check(_ string, params config.ServiceParams, now time.Time) (check.Outcome, bool) {
	if len(v) == 0 {
		return check.Outcome{}, false
	}

	// Two principals sharing the gateway name make the section
	// ambiguous; guessing which one carries the VPN certificates would
	// alert on the wrong object.
	if len(v) > 1 {
		return check.Outcome{
			State: check.StateUnknown,
			Summary: fmt.Sprintf(
				"Multiple Entra service principals with the same name found (%s). "+
					"Cannot decide which one is used for the Conditional Access VPN. "+
					"Please keep the name of the service principal unique.", v[0].Name),
		}, true
	}

	app := v[0]
	if len(app.Certs) == 0 {
		return check.Outcome{
			State:   check.StateUnknown,
			Summary: "No certificates found on the VPN service principal",
		}, true
	}

	items := make([]check.Expirable, 0, len(app.Certs))
	var paragraphs []string
	for _, cert := range app.Certs {
		expires, err := check.ParseExpiration(cert.Expiration)
		if err != nil {
			return check.Outcome{
				State:   check.StateUnknown,
				Summary: fmt.Sprintf("Certificate %s has an unreadable expiration time", cert.ID),
				Details: err.Error(),
			}, true
		}
		items = append(items, check.Expirable{
			ID:          cert.ID,
			Description: cert.Name,
			Expires:     expires,
		})
		paragraphs = append(paragraphs, strings.Join([]string{
			fmt.Sprintf("ID: %s", cert.ID),
			fmt.Sprintf(" - Description: %s", cert.Name),
			fmt.Sprintf(" - Expiration time: %s", check.Datetime(expires)),
		}, "\n"))
	}

	header := strings.Join([]string{
		fmt.Sprintf("App name: %s", app.Name),
		fmt.Sprintf("App ID: %s", app.AppID),
		fmt.Sprintf("Object ID: %s", app.ObjectID),
	}, "\n")
	details := header + "\n\n" + strings.Join(paragraphs, "\n\n")

	earliest := check.Earliest(items, nil)
	remaining := earliest.Expires.Sub(now)
	levels := params.CheckLevels()
	state, levelText := expiryResult(remaining, levels)

	return check.Outcome{
		State:   state,
		Summary: levelText + ", Expiration time: " + check.Datetime(earliest.Expires),
		Details: details,
		Metric:  validityMetric("entra_ca_vpn_cert_remaining_validity", remaining, levels),
	}, true
}
