// Package notify sends webhook notifications when services enter or
// escalate into alerting states.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/config"
)

const httpTimeout = 10 * time.Second

// Notifier sends alerts for services that cross state thresholds.
type Notifier struct {
	states   map[check.State]bool
	sent     map[string]time.Time
	client   *http.Client
	webhooks []config.WebhookConfig
	cooldown time.Duration
	mu       sync.Mutex
}

// New creates a Notifier from notification config. Returns nil if not enabled or no webhooks.
func New(cfg config.NotificationConfig) *Notifier {
	if !cfg.Enabled || len(cfg.Webhooks) == 0 {
		return nil
	}

	states := make(map[check.State]bool)
	for _, s := range cfg.States {
		states[check.ParseState(strings.ToUpper(s))] = true
	}
	// Default to crit+warn if none specified
	if len(states) == 0 {
		states[check.StateCrit] = true
		states[check.StateWarn] = true
	}

	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = time.Hour
	}

	return &Notifier{
		webhooks: cfg.Webhooks,
		states:   states,
		cooldown: cooldown,
		sent:     make(map[string]time.Time),
		client:   &http.Client{Timeout: httpTimeout},
	}
}

// Notify compares prev and curr snapshots and sends notifications for
// services that are newly alerting or escalated from WARN to CRIT.
func (n *Notifier) Notify(prev, curr check.Snapshot) {
	prevStates := make(map[string]check.State)
	for i := range prev.Outcomes {
		prevStates[prev.Outcomes[i].Service] = prev.Outcomes[i].Outcome.State
	}

	now := time.Now()
	var alerting []check.ServiceOutcome

	n.mu.Lock()
	for i := range curr.Outcomes {
		o := &curr.Outcomes[i]
		if !n.states[o.Outcome.State] {
			continue
		}

		prevState, existed := prevStates[o.Service]
		if existed && !isEscalation(prevState, o.Outcome.State) {
			continue
		}

		if lastSent, ok := n.sent[o.Service]; ok && now.Sub(lastSent) < n.cooldown {
			continue
		}

		alerting = append(alerting, *o)
		n.sent[o.Service] = now
	}
	n.mu.Unlock()

	resolved := n.computeResolved(prev, curr)

	if len(alerting) == 0 && len(resolved) == 0 {
		return
	}

	for _, wh := range n.webhooks {
		switch wh.Type {
		case "slack":
			if len(alerting) > 0 {
				n.sendSlack(wh.URL, alerting)
			}
		default:
			n.sendGeneric(wh.URL, alerting, resolved)
		}
	}
}

// computeResolved returns service names that were alerting in prev and
// are OK (or gone) in curr.
func (n *Notifier) computeResolved(prev, curr check.Snapshot) []string {
	currStates := make(map[string]check.State, len(curr.Outcomes))
	for i := range curr.Outcomes {
		currStates[curr.Outcomes[i].Service] = curr.Outcomes[i].Outcome.State
	}
	var resolved []string
	for i := range prev.Outcomes {
		o := &prev.Outcomes[i]
		if !n.states[o.Outcome.State] {
			continue
		}
		if state, ok := currStates[o.Service]; !ok || state == check.StateOK {
			resolved = append(resolved, o.Service)
		}
	}
	return resolved
}

// isEscalation returns true if the state went from WARN to CRIT.
func isEscalation(prev, curr check.State) bool {
	return prev == check.StateWarn && curr == check.StateCrit
}

// GenericPayload is the JSON body sent to generic webhooks.
type GenericPayload struct {
	Timestamp time.Time      `json:"timestamp"`
	Summary   string         `json:"summary"`
	Alerts    []GenericAlert `json:"alerts"`
	Resolved  []string       `json:"resolved,omitempty"`
}

// GenericAlert is a single alerting service in the generic webhook payload.
type GenericAlert struct {
	Section string `json:"section"`
	Service string `json:"service"`
	State   string `json:"state"`
	Summary string `json:"summary"`
}

func (n *Notifier) sendGeneric(webhookURL string, alerting []check.ServiceOutcome, resolved []string) {
	summary := buildSummary(alerting)
	if len(alerting) == 0 {
		summary = fmt.Sprintf("%d resolved service(s)", len(resolved))
	}
	payload := GenericPayload{
		Timestamp: time.Now().UTC(),
		Summary:   summary,
		Alerts:    make([]GenericAlert, len(alerting)),
		Resolved:  resolved,
	}
	for i := range alerting {
		payload.Alerts[i] = GenericAlert{
			Section: alerting[i].Section,
			Service: alerting[i].Service,
			State:   alerting[i].Outcome.State.String(),
			Summary: alerting[i].Outcome.Summary,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("notification: marshal error", "err", err)
		return
	}

	n.post(webhookURL, body)
}

// SlackPayload is the JSON body sent to Slack incoming webhooks.
type SlackPayload struct {
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Slack Block Kit block.
type SlackBlock struct {
	Text *SlackText `json:"text,omitempty"`
	Type string     `json:"type"`
}

// SlackText is a Slack text element.
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (n *Notifier) sendSlack(webhookURL string, alerting []check.ServiceOutcome) {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: fmt.Sprintf("entrawatch: %d alerting service(s)", len(alerting)),
			},
		},
	}

	for i := range alerting {
		o := &alerting[i]
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("[%s] *%s* — %s",
					o.Outcome.State, o.Service, o.Outcome.Summary),
			},
		})
	}

	blocks = append(blocks, SlackBlock{
		Type: "context",
		Text: &SlackText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("Source: entrawatch | %s", time.Now().UTC().Format(time.RFC3339)),
		},
	})

	body, err := json.Marshal(SlackPayload{Blocks: blocks})
	if err != nil {
		slog.Warn("notification: slack marshal error", "err", err)
		return
	}

	n.post(webhookURL, body)
}

func (n *Notifier) post(webhookURL string, body []byte) {
	resp, err := n.client.Post(webhookURL, "application/json", bytes.NewReader(body)) //nolint:noctx // fire-and-forget notification
	if err != nil {
		slog.Warn("notification: webhook delivery failed", "url", webhookURL, "err", err)
		return
	}
	defer resp.Body.Close() //nolint:errcheck // read-only close
	if resp.StatusCode >= 300 {
		slog.Warn("notification: webhook returned non-2xx", "url", webhookURL, "status", resp.StatusCode)
	}
}

func buildSummary(alerting []check.ServiceOutcome) string {
	var critCount, warnCount, unknownCount int
	for i := range alerting {
		switch alerting[i].Outcome.State {
		case check.StateCrit:
			critCount++
		case check.StateWarn:
			warnCount++
		case check.StateUnknown:
			unknownCount++
		}
	}
	var parts []string
	if critCount > 0 {
		parts = append(parts, fmt.Sprintf("%d crit", critCount))
	}
	if warnCount > 0 {
		parts = append(parts, fmt.Sprintf("%d warn", warnCount))
	}
	if unknownCount > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown", unknownCount))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d service(s)", len(alerting))
	}
	return strings.Join(parts, ", ") + " service(s)"
}
