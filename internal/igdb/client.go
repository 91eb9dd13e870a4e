package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL  = "https://api.igdb.com/v4"
	defaultTokenURL = "https://id.twitch.tv/oauth2/token"

	// renew slightly before the server-side expiry to absorb clock
	// skew and in-flight latency
	tokenSafetyMargin = 60 * time.Second
)

// Client talks to the catalog API using Twitch client-credentials
// auth. The token lives in a single mutex-guarded slot: absent, then
// valid until expiry, then absent again after invalidation. Safe for
// concurrent use.
type Client struct {
	http         *resty.Client
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time

	delay time.Duration
}

// NewClient builds a catalog client with explicit endpoints. Empty
// baseURL/tokenURL select the live service.
func NewClient(clientID, clientSecret, baseURL, tokenURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &Client{
		http:         resty.New().SetTimeout(20 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
	}
}

// NewClientFromEnv reads TWITCH_CLIENT_ID / TWITCH_CLIENT_SECRET and
// fails fast when either is unset.
func NewClientFromEnv() (*Client, error) {
	clientID := os.Getenv("TWITCH_CLIENT_ID")
	clientSecret := os.Getenv("TWITCH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, &ConfigError{Missing: "TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET"}
	}
	return NewClient(clientID, clientSecret, "", ""), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"grant_type":    "client_credentials",
		}).
		Post(c.tokenURL)
	if err != nil {
		return "", fmt.Errorf("igdb: token request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", &AuthError{Status: resp.StatusCode()}
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", fmt.Errorf("igdb: decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSafetyMargin)
	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// SetRequestDelay makes the client wait d before every resource call,
// retries included. Token requests are not paced.
func (c *Client) SetRequestDelay(d time.Duration) *Client {
	c.delay = d
	return c
}

func (c *Client) pace(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) post(ctx context.Context, endpoint, body, token string) (*resty.Response, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetHeader("Client-ID", c.clientID).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("Content-Type", "text/plain").
		SetBody(body).
		Post(c.baseURL + "/" + endpoint)
}

// Query posts a declarative query body to an endpoint and decodes the
// JSON array response into out. A 401 invalidates the cached token and
// triggers exactly one retry with a fresh token; any further failure
// surfaces as APIError. The single retry tolerates token-expiry races
// without risking an unbounded loop.
func (c *Client) Query(ctx context.Context, endpoint, body string, out any) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.post(ctx, endpoint, body, token)
	if err != nil {
		return fmt.Errorf("igdb: %s request: %w", endpoint, err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.invalidateToken()
		token, err = c.getToken(ctx)
		if err != nil {
			return err
		}
		resp, err = c.post(ctx, endpoint, body, token)
		if err != nil {
			return fmt.Errorf("igdb: %s retry: %w", endpoint, err)
		}
	}

	if !resp.IsSuccess() {
		return &APIError{Status: resp.StatusCode()}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("igdb: decode %s response: %w", endpoint, err)
	}
	return nil
}
