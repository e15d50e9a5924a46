// Package reddit implements platform.Client against the Reddit JSON API.
//
// The client authenticates with the OAuth2 password grant (script app
// credentials), refreshes its token when stale, and rate-limits every
// request through a shared token bucket so the single-threaded cycle
// never trips the API quota. Server-side failures (HTTP 5xx) surface as
// *platform.ServerError so the outer run loop can back off and retry
// the whole cycle.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aitp-mods/answerbot/internal/platform"
)

const (
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL  = "https://oauth.reddit.com"

	// Reddit allows 60 requests per minute for script apps.
	requestInterval = time.Second
)

// Credentials are the script-app OAuth2 credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
}

// Client is a rate-limited Reddit API client bound to one community.
//
// Not safe for concurrent use beyond what the rate limiter serializes;
// the sweep scheduler is single-threaded so this never matters in
// practice.
type Client struct {
	creds     Credentials
	community string
	http      *http.Client
	limiter   *rate.Limiter

	// Endpoint bases; overridden by tests, never by configuration.
	authURL string
	apiURL  string

	token       string
	tokenExpiry time.Time
}

var _ platform.Client = (*Client)(nil)

// NewClient creates a client for the given community. No network I/O
// happens until the first call; authentication is lazy.
func NewClient(creds Credentials, community string) *Client {
	return &Client{
		creds:     creds,
		community: community,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(requestInterval), 1),
		authURL:   defaultAuthURL,
		apiURL:    defaultAPIURL,
	}
}

// authenticate fetches a fresh OAuth token when the current one is
// absent or about to expire.
func (c *Client) authenticate(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.creds.Username)
	form.Set("password", c.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &platform.ServerError{Op: "authenticate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &platform.ServerError{Op: "authenticate", Status: resp.StatusCode, Err: fmt.Errorf("token endpoint failed")}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authenticate: status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("authenticate: empty access token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return nil
}

// do issues one authenticated, rate-limited API request and decodes the
// JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", op, err)
	}
	if err := c.authenticate(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader
	if method == http.MethodPost && form != nil {
		body = strings.NewReader(form.Encode())
	}
	target := c.apiURL + path
	if method == http.MethodGet && form != nil {
		target += "?" + form.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.creds.UserAgent)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network-level failures are treated as transient: the platform
		// is unreachable, not misused.
		return &platform.ServerError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &platform.ServerError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("server error")}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: status %d", op, resp.StatusCode)
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
