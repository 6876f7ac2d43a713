package vrchat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout = 30 * time.Second

	// maxErrorBody caps how much of an upstream error body is kept for logging.
	maxErrorBody = 200
)

// RequestObserver records the latency of one API request under its stable
// endpoint label. Implemented by the metrics package; nil disables recording.
type RequestObserver interface {
	ObserveRequest(endpoint string, seconds float64)
}

// Credentials holds the authentication material for the VRChat API.
// Cookie takes precedence; Username/Password is the basic-auth-then-cookie
// handoff used by accounts without two-factor auth.
type Credentials struct {
	Cookie   string
	Username string
	Password string
}

// Config collects everything needed to construct a Client.
type Config struct {
	BaseURL      string
	UserAgent    string
	RequestDelay time.Duration // minimum interval between any two requests
	Cooldown     time.Duration // forced suspension after a 429
	Credentials  Credentials
	Observer     RequestObserver
}

// Client is the rate-limited VRChat API client. All outbound requests share
// one limiter, so concurrent callers are throttled to a single global rate.
type Client struct {
	baseURL  string
	http     *http.Client
	hdr      *headerRoundTripper
	limiter  *rate.Limiter
	cooldown time.Duration
	observer RequestObserver
	creds    Credentials
	authed   atomic.Bool

	// sleep is the cooldown suspension, injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Client. The base URL must not end with a trailing slash.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vrchat: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("vrchat: parse base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("vrchat: cookie jar: %w", err)
	}

	hdr := &headerRoundTripper{
		base:      http.DefaultTransport,
		userAgent: cfg.UserAgent,
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		http:     &http.Client{Transport: hdr, Jar: jar, Timeout: defaultRequestTimeout},
		hdr:      hdr,
		limiter:  rate.NewLimiter(limit, 1),
		cooldown: cfg.Cooldown,
		observer: cfg.Observer,
		creds:    cfg.Credentials,
		sleep:    sleepCtx,
	}, nil
}

// Authenticated reports whether the session is currently considered valid.
// It flips false when any request observes a 401.
func (c *Client) Authenticated() bool { return c.authed.Load() }

// Authenticate establishes a session, preferring the auth cookie over
// username/password. It must succeed once at startup and is re-invoked by the
// scheduler whenever a 401 is observed.
func (c *Client) Authenticate(ctx context.Context) error {
	switch {
	case c.creds.Cookie != "":
		slog.Info("vrchat: authenticating with auth cookie")
		if err := c.setAuthCookie(c.creds.Cookie); err != nil {
			return err
		}
		u, err := c.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("vrchat: auth cookie rejected: %w", err)
		}
		slog.Info("vrchat: authenticated", "display_name", u.DisplayName)
		c.authed.Store(true)
		return nil

	case c.creds.Username != "":
		slog.Info("vrchat: authenticating with credentials", "username", c.creds.Username)
		// Basic auth applies to the first /auth/user call only; the API hands
		// back a session cookie that the jar retains for everything after.
		encoded := base64.StdEncoding.EncodeToString([]byte(
			url.QueryEscape(c.creds.Username) + ":" + url.QueryEscape(c.creds.Password),
		))
		c.hdr.setAuthorization("Basic " + encoded)
		defer c.hdr.setAuthorization("")

		u, err := c.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("vrchat: login failed: %w", err)
		}
		if len(u.RequiresTwoFactorAuth) > 0 {
			return errors.New("vrchat: account requires two-factor auth, use an auth cookie instead")
		}
		slog.Info("vrchat: authenticated", "display_name", u.DisplayName)
		c.authed.Store(true)
		return nil

	default:
		return errors.New("vrchat: no credentials configured, set an auth cookie or username/password")
	}
}

func (c *Client) setAuthCookie(value string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("vrchat: parse base URL: %w", err)
	}
	c.http.Jar.SetCookies(u, []*http.Cookie{{Name: "auth", Value: value, Path: "/"}})
	return nil
}

// get performs one throttled GET against endpoint and decodes a 200 body
// into out. See the package doc for the status → error mapping.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	target := c.baseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &APIError{Kind: KindTransport, Endpoint: endpoint, cause: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Endpoint: endpoint, cause: err}
	}
	defer resp.Body.Close()
	// Only completed exchanges land in the latency histogram; network-level
	// failures have no meaningful duration to record.
	c.observe(endpoint, time.Since(start).Seconds())

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Kind: KindMalformed, Endpoint: endpoint, Status: resp.StatusCode, cause: err}
		}
		return nil

	case http.StatusUnauthorized:
		slog.Warn("vrchat: session expired", "endpoint", endpoint)
		c.authed.Store(false)
		return &APIError{Kind: KindUnauthorized, Endpoint: endpoint, Status: resp.StatusCode}

	case http.StatusTooManyRequests:
		slog.Warn("vrchat: rate limited, cooling down",
			"endpoint", endpoint, "cooldown", c.cooldown)
		if err := c.sleep(ctx, c.cooldown); err != nil {
			return err
		}
		return &APIError{Kind: KindRateLimited, Endpoint: endpoint, Status: resp.StatusCode}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Kind:     KindTransport,
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}
}

func (c *Client) observe(endpoint string, seconds float64) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpointLabel(endpoint), seconds)
	}
}

// endpointLabel collapses an endpoint path to its first segment so that
// per-entity paths like /worlds/wrld_abc share the label "worlds".
func endpointLabel(endpoint string) string {
	trimmed := strings.TrimPrefix(endpoint, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// headerRoundTripper injects the User-Agent, Accept, and (during the basic
// login handshake) Authorization headers into every outgoing request.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string

	mu            sync.Mutex
	authorization string
}

func (t *headerRoundTripper) setAuthorization(v string) {
	t.mu.Lock()
	t.authorization = v
	t.mu.Unlock()
}

func (t *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	t.mu.Lock()
	if t.authorization != "" {
		req.Header.Set("Authorization", t.authorization)
	}
	t.mu.Unlock()
	return t.base.RoundTrip(req)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
