// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIBase  = "https://www.googleapis.com/blogger/v3"
	requestTimeout  = 60 * time.Second

	// tokenSafety expires cached access tokens early so a token never
	// dies mid-request.
	tokenSafety = time.Minute
)

// Google publishes through the Blogger v3 API using an offline refresh
// token. Access tokens are cached until shortly before expiry.
type Google struct {
	keys     func() model.APIKeys
	tokenURL string
	apiBase  string
	client   *http.Client
	logger   *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewGoogle creates a Blogger API publisher.
func NewGoogle(keys func() model.APIKeys, logger *slog.Logger) *Google {
	return &Google{
		keys:     keys,
		tokenURL: defaultTokenURL,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Publish inserts the post into the configured blog.
func (p *Google) Publish(ctx context.Context, post Post) (string, error) {
	keys := p.keys()
	if keys.BloggerBlogID == "" || keys.GoogleClientID == "" ||
		keys.GoogleClientSecret == "" || keys.GoogleRefreshToken == "" {
		return "", ErrNotConfigured
	}

	token, err := p.accessTokenFor(ctx, keys)
	if err != nil {
		return "", fmt.Errorf("blogger auth: %w", err)
	}

	labels := post.Labels
	if labels == nil {
		labels = []string{}
	}
	body, err := json.Marshal(map[string]any{
		"title":   post.Title,
		"content": post.HTML,
		"labels":  labels,
	})
	if err != nil {
		return "", fmt.Errorf("blogger marshal: %w", err)
	}

	insertURL := fmt.Sprintf("%s/blogs/%s/posts", p.apiBase, url.PathEscape(keys.BloggerBlogID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, insertURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("blogger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blogger call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("blogger read: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		p.invalidateToken()
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("blogger insert (status %d): %s", resp.StatusCode, excerptBody(respBody))
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("blogger decode: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("blogger insert: response without url")
	}

	p.logger.Info("post published to blogger", "post_id", result.ID, "url", result.URL)
	return result.URL, nil
}

// accessTokenFor returns a cached access token or exchanges the refresh
// token for a fresh one.
func (p *Google) accessTokenFor(ctx context.Context, keys model.APIKeys) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {keys.GoogleClientID},
		"client_secret": {keys.GoogleClientSecret},
		"refresh_token": {keys.GoogleRefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("token read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange (status %d): %s", resp.StatusCode, excerptBody(respBody))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &token); err != nil {
		return "", fmt.Errorf("token decode: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access token")
	}

	p.accessToken = token.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSafety)
	return p.accessToken, nil
}

func (p *Google) invalidateToken() {
	p.mu.Lock()
	p.accessToken = ""
	p.mu.Unlock()
}

func excerptBody(data []byte) string {
	const limit = 200
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}
