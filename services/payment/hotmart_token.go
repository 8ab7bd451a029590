package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	hotmartAPIBaseURL     = "https://api.hotmart.com"
	hotmartSandboxBaseURL = "https://sandbox.hotmart.com"

	// tokens are renewed this long before their real expiry
	tokenRefreshMargin = 60 * time.Second
)

var ErrHotmartNotConfigured = errors.New("payment: hotmart credentials not configured")

// TokenSourceConfig configures the Hotmart OAuth token source
type TokenSourceConfig struct {
	ClientID     string
	ClientSecret string
	UseSandbox   bool
	BaseURL      string // overrides the sandbox switch, used in tests
}

// TokenSource fetches and caches a Hotmart access token obtained through the
// client-credentials flow. The cached value is held explicitly with its
// expiry and refreshed before it actually expires.
type TokenSource struct {
	config TokenSourceConfig
	rest   *resty.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a token source for the configured credentials
func NewTokenSource(config TokenSourceConfig) *TokenSource {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = hotmartAPIBaseURL
		if config.UseSandbox {
			baseURL = hotmartSandboxBaseURL
		}
	}

	return &TokenSource{
		config: config,
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid access token, requesting a new one only when the
// cached token is missing or about to expire
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiresAt) {
		return t.token, nil
	}

	if t.config.ClientID == "" || t.config.ClientSecret == "" {
		return "", ErrHotmartNotConfigured
	}

	var body tokenResponse
	resp, err := t.rest.R().
		SetContext(ctx).
		SetBasicAuth(t.config.ClientID, t.config.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&body).
		Post("/oauth/token")
	if err != nil {
		return "", fmt.Errorf("hotmart token request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("hotmart token request: status %d", resp.StatusCode())
	}
	if body.AccessToken == "" {
		return "", errors.New("hotmart token request: empty access token")
	}

	ttl := time.Duration(body.ExpiresIn)*time.Second - tokenRefreshMargin
	if ttl < 0 {
		ttl = 0
	}

	t.token = body.AccessToken
	t.expiresAt = time.Now().Add(ttl)
	return t.token, nil
}

// Invalidate drops the cached token so the next call fetches a fresh one
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = ""
	t.expiresAt = time.Time{}
}
