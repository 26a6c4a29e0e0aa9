// Package secrets shares one-time credentials through the OneTimeSecret API.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hawktesters/portal/internal/config"
)

const (
	defaultRequestTimeout = 15 * time.Second

	// secretTTLSeconds is how long a shared secret stays retrievable.
	secretTTLSeconds = "21600"
)

// Sharer creates one-time links for secrets.
type Sharer interface {
	Share(ctx context.Context, secret string) (string, error)
}

// Client talks to a OneTimeSecret-compatible API.
type Client struct {
	baseURL    string
	passphrase string
	httpClient *http.Client
}

// NewClient constructs a Client from config.
func NewClient(cfg config.SecretsConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		passphrase: cfg.Passphrase,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

type shareResponse struct {
	SecretKey string `json:"secret_key"`
}

// Share stores the secret remotely and returns a one-time retrieval link.
func (c *Client) Share(ctx context.Context, secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("secrets: empty secret")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	form := url.Values{}
	form.Set("secret", secret)
	form.Set("ttl", secretTTLSeconds)
	if c.passphrase != "" {
		form.Set("passphrase", c.passphrase)
	}

	requestCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.baseURL+"/api/v1/share", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("secrets: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("secrets: request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("secrets: close response body failed")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("secrets: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("secrets: read response: %w", err)
	}

	var parsed shareResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("secrets: decode response: %w", err)
	}
	if parsed.SecretKey == "" {
		return "", fmt.Errorf("secrets: response missing secret key")
	}

	return c.baseURL + "/secret/" + parsed.SecretKey, nil
}
