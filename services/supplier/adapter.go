package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"stayhub/config"

	"go.uber.org/zap"
)

// HTTPClient talks to the supplier over HTTP and owns the bearer token
// lifecycle. The token and its generation counter are the only mutable state;
// refresh is serialized so concurrent callers share one refresh instead of
// each triggering their own.
type HTTPClient struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	client       *http.Client
	logger       *zap.Logger

	mu       sync.Mutex
	token    string
	tokenGen uint64
}

// NewHTTPClient builds a supplier client from AppConfig.
func NewHTTPClient(logger *zap.Logger) *HTTPClient {
	return NewHTTPClientWith(
		config.AppConfig.SupplierBaseURL,
		config.AppConfig.SupplierTokenURL,
		config.AppConfig.SupplierClientID,
		config.AppConfig.SupplierClientSecret,
		config.SupplierTimeout(),
		logger,
	)
}

// NewHTTPClientWith builds a supplier client with explicit settings.
func NewHTTPClientWith(baseURL, tokenURL, clientID, clientSecret string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Call issues one authenticated request against the supplier. On an auth
// rejection it refreshes the bearer token once and retries the original
// request; a second consecutive rejection is AuthExhaustedError. Non-auth
// error statuses surface as SupplierError without retry. A 204 returns an
// empty, non-nil body.
func (c *HTTPClient) Call(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	token, gen := c.currentToken()
	if token == "" {
		var err error
		token, gen, err = c.refreshToken(ctx, gen)
		if err != nil {
			return nil, fmt.Errorf("supplier token acquisition failed: %w", err)
		}
	}

	raw, status, err := c.do(ctx, method, endpoint, body, token)
	if err != nil {
		return nil, err
	}

	if isAuthRejection(status) {
		c.logger.Info("supplier rejected token, refreshing",
			zap.String("endpoint", endpoint), zap.Int("status", status))
		token, _, err = c.refreshToken(ctx, gen)
		if err != nil {
			return nil, fmt.Errorf("supplier token refresh failed: %w", err)
		}
		raw, status, err = c.do(ctx, method, endpoint, body, token)
		if err != nil {
			return nil, err
		}
		if isAuthRejection(status) {
			return nil, &AuthExhaustedError{Endpoint: endpoint}
		}
	}

	if status == http.StatusNoContent {
		return []byte{}, nil
	}
	if status >= 400 {
		return nil, &SupplierError{Status: status, Body: string(raw)}
	}
	return raw, nil
}

// do performs a single HTTP round trip with the given bearer token.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body any, token string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal supplier request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build supplier request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("supplier call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read supplier response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// currentToken returns the cached token and its generation.
func (c *HTTPClient) currentToken() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.tokenGen
}

// refreshToken exchanges the client secret for a fresh bearer token. The
// mutex is held across the exchange so only one refresh is in flight; callers
// that raced in with a stale generation get the already-refreshed token back
// without hitting the token endpoint again.
func (c *HTTPClient) refreshToken(ctx context.Context, usedGen uint64) (string, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenGen != usedGen && c.token != "" {
		return c.token, c.tokenGen, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token endpoint call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", 0, &SupplierError{Status: resp.StatusCode, Body: string(raw)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &tokenResp); err != nil {
		return "", 0, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", 0, fmt.Errorf("token endpoint returned empty access token")
	}

	c.token = tokenResp.AccessToken
	c.tokenGen++
	c.logger.Debug("supplier token refreshed", zap.Uint64("generation", c.tokenGen))
	return c.token, c.tokenGen, nil
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
