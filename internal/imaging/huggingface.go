// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
)

const (
	defaultHFEndpoint = "https://api-inference.huggingface.co/models/runwayml/stable-diffusion-v1-5"
	httpTimeout       = 120 * time.Second
)

// HuggingFace generates hero images with the hosted Stable Diffusion
// inference API. The raw response body is the image itself.
type HuggingFace struct {
	keys     func() model.APIKeys
	store    *Store
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHuggingFace creates a Stable Diffusion image generator.
func NewHuggingFace(keys func() model.APIKeys, store *Store, logger *slog.Logger) *HuggingFace {
	return &HuggingFace{
		keys:     keys,
		store:    store,
		endpoint: defaultHFEndpoint,
		client:   &http.Client{Timeout: httpTimeout},
		logger:   logger,
	}
}

// Generate renders one image for the title and stores it locally.
func (g *HuggingFace) Generate(ctx context.Context, title string) (*Result, error) {
	key := g.keys().HFAPIKey
	if key == "" {
		return nil, fmt.Errorf("huggingface: %w", ErrNoAPIKey)
	}

	payload, err := json.Marshal(map[string]string{"inputs": BuildPrompt(title)})
	if err != nil {
		return nil, fmt.Errorf("huggingface marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("huggingface request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("huggingface call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, truncateBody(data))
	}

	result, err := g.store.SaveJPEG(data)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("hero image generated", "provider", "huggingface", "url", result.URL)
	return result, nil
}

// truncateBody keeps error messages readable when the API returns HTML.
func truncateBody(data []byte) string {
	const limit = 200
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}
