// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/autopost-go/internal/model"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	dalleModel           = "dall-e-3"
	dalleSize            = "1792x1024"
)

// OpenAI generates hero images with DALL-E.
type OpenAI struct {
	keys    func() model.APIKeys
	store   *Store
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAI creates a DALL-E image generator.
func NewOpenAI(keys func() model.APIKeys, store *Store, logger *slog.Logger) *OpenAI {
	return &OpenAI{
		keys:    keys,
		store:   store,
		baseURL: defaultOpenAIBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		logger:  logger,
	}
}

// Generate renders one landscape image for the title and stores it
// locally.
func (g *OpenAI) Generate(ctx context.Context, title string) (*Result, error) {
	key := g.keys().OpenAIAPIKey
	if key == "" {
		return nil, fmt.Errorf("openai image: %w", ErrNoAPIKey)
	}

	body := map[string]any{
		"model":           dalleModel,
		"prompt":          BuildPrompt(title),
		"n":               1,
		"size":            dalleSize,
		"response_format": "b64_json",
		"quality":         "standard",
	}
	respBody, err := g.doJSONRequest(ctx, g.baseURL+"/images/generations", key, body)
	if err != nil {
		return nil, fmt.Errorf("openai image: %w", err)
	}

	var result struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("openai image decode: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("openai image: no data returned")
	}

	var imgData []byte
	switch {
	case result.Data[0].B64JSON != "":
		imgData, err = base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("openai image base64 decode: %w", err)
		}
	case result.Data[0].URL != "":
		imgData, err = g.download(ctx, result.Data[0].URL)
		if err != nil {
			return nil, fmt.Errorf("openai image download: %w", err)
		}
	default:
		return nil, fmt.Errorf("openai image: empty data entry")
	}

	stored, err := g.store.SaveJPEG(imgData)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("hero image generated", "provider", "openai", "url", stored.URL)
	return stored, nil
}

func (g *OpenAI) doJSONRequest(ctx context.Context, url, apiKey string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, truncateBody(respBody))
	}
	return respBody, nil
}

func (g *OpenAI) download(ctx context.Context, imgURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
