// Package agent collects Entra metadata from the Microsoft Graph API
// and emits the section payloads the checks consume.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ppiankov/entrawatch/internal/config"
)

const (
	graphBaseURL = "https://graph.microsoft.com"
	graphScope   = "https://graph.microsoft.com/.default"

	// ProxyFromEnvironment and ProxyNone are the non-URL proxy modes.
	ProxyFromEnvironment = "FROM_ENVIRONMENT"
	ProxyNone            = "NO_PROXY"
)

// Client talks to the Microsoft Graph API with app-only credentials.
type Client struct {
	cred    azcore.TokenCredential
	http    *http.Client
	base    string
	scope   string
	timeout time.Duration
	tracer  trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithCredential overrides the token credential (used in tests).
func WithCredential(cred azcore.TokenCredential) Option {
	return func(c *Client) { c.cred = cred }
}

// WithBaseURL overrides the Graph endpoint (used in tests).
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithTracer attaches a tracer for per-section collection spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// New builds a Graph client from the tenant configuration. The client
// secret is resolved from the environment and exchanged for tokens via
// the OAuth2 client-credentials flow.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	switch cfg.Proxy {
	case "", ProxyFromEnvironment:
	case ProxyNone:
		transport.Proxy = nil
	default:
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	c := &Client{
		http:    &http.Client{Transport: transport},
		base:    graphBaseURL,
		scope:   graphScope,
		timeout: cfg.Timeout,
		tracer:  noop.NewTracerProvider().Tracer("entrawatch"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cred == nil {
		secret, err := cfg.Tenant.Secret()
		if err != nil {
			return nil, err
		}
		cred, err := azidentity.NewClientSecretCredential(cfg.Tenant.TenantID, cfg.Tenant.AppID, secret, nil)
		if err != nil {
			return nil, fmt.Errorf("creating client secret credential: %w", err)
		}
		c.cred = cred
	}
	return c, nil
}

// get performs one authenticated GET against an absolute or
// base-relative Graph URL and returns the response body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{c.scope}})
	if err != nil {
		return nil, fmt.Errorf("acquiring Graph token: %w", err)
	}

	if rawURL[0] == '/' {
		rawURL = c.base + rawURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: req.URL.Path, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	return body, nil
}

// listAll pages through a Graph collection, following @odata.nextLink
// until exhausted.
func (c *Client) listAll(ctx context.Context, path string) ([]json.RawMessage, error) {
	var values []json.RawMessage
	next := path
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}
		var page struct {
			Value    []json.RawMessage `json:"value"`
			NextLink string            `json:"@odata.nextLink"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding Graph page: %w", err)
		}
		values = append(values, page.Value...)
		next = page.NextLink
	}
	return values, nil
}

// StatusError is a non-200 Graph response.
type StatusError struct {
	Path       string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graph request %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// NotFound reports whether err is a Graph 404.
func NotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func excerpt(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
