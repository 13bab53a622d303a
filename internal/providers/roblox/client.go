// Package roblox talks to the upstream asset platform: the catalog and
// existence APIs used to resolve metadata, and the CDN-style delivery
// endpoints payloads are fetched from.
package roblox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"assetproxy/internal/infra"
)

// VerifyMode selects how a candidate endpoint is judged.
type VerifyMode string

const (
	// VerifyHead issues HEAD and succeeds only on status 200.
	VerifyHead VerifyMode = "head"
	// VerifyBody issues GET and succeeds when the decoded body is non-empty.
	VerifyBody VerifyMode = "body"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxRedirects = 5
	maxEndpoints        = 3
)

// AttemptObserver receives one notification per candidate attempt.
type AttemptObserver interface {
	ObserveAttempt(endpoint string, ok bool)
}

// Options configures the upstream client.
type Options struct {
	CatalogBaseURL  string
	DeliveryBaseURL string
	Endpoints       []string
	VerifyMode      VerifyMode
	Timeout         time.Duration
	MaxRedirects    int
	CookieName      string
	UserAgent       string
	MaxPayloadBytes int64
	HTTPClient      *http.Client
	Logger          *infra.Logger
	Observer        AttemptObserver
}

// Client resolves metadata and fetches payloads. Calls made through one
// Client never run concurrently within a single operation.
type Client struct {
	catalogBaseURL  string
	deliveryBaseURL string
	endpoints       []string
	verify          VerifyMode
	cookieName      string
	userAgent       string
	maxPayload      int64
	httpClient      *http.Client
	logger          *infra.Logger
	observer        AttemptObserver
}

// NewClient constructs a client with defaults for every unset option.
func NewClient(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}
	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}
	if httpClient.CheckRedirect == nil {
		httpClient.CheckRedirect = limitRedirects(maxRedirects)
	}

	endpoints := make([]string, 0, len(opts.Endpoints))
	for _, e := range opts.Endpoints {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	if len(endpoints) == 0 {
		return nil, errors.New("roblox: at least one delivery endpoint is required")
	}
	if len(endpoints) > maxEndpoints {
		return nil, fmt.Errorf("roblox: at most %d delivery endpoints, got %d", maxEndpoints, len(endpoints))
	}

	verify := opts.VerifyMode
	switch verify {
	case "":
		verify = VerifyHead
	case VerifyHead, VerifyBody:
	default:
		return nil, fmt.Errorf("roblox: unknown verify mode %q", verify)
	}

	catalog := strings.TrimRight(opts.CatalogBaseURL, "/")
	if catalog == "" {
		catalog = "https://catalog.roblox.com"
	}
	delivery := strings.TrimRight(opts.DeliveryBaseURL, "/")
	if delivery == "" {
		delivery = "https://assetdelivery.roblox.com"
	}

	return &Client{
		catalogBaseURL:  catalog,
		deliveryBaseURL: delivery,
		endpoints:       endpoints,
		verify:          verify,
		cookieName:      opts.CookieName,
		userAgent:       opts.UserAgent,
		maxPayload:      opts.MaxPayloadBytes,
		httpClient:      &httpClient,
		logger:          infra.OrDiscard(opts.Logger),
		observer:        opts.Observer,
	}, nil
}

// VerifyMode returns the configured verification mode.
func (c *Client) VerifyMode() VerifyMode {
	return c.verify
}

func (c *Client) requestContext(credential string) RequestContext {
	return NewRequestContext(c.userAgent, c.cookieName, credential)
}

func limitRedirects(max int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		return nil
	}
}
