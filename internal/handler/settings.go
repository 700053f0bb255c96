// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"

	"github.com/olegiv/autopost-go/internal/config"
	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/schedule"
	"github.com/olegiv/autopost-go/internal/state"
)

// SettingsHandler handles provider credentials and posting configuration.
type SettingsHandler struct {
	state  *state.Manager
	events *events.Service
	cfg    *config.Config
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(st *state.Manager, es *events.Service, cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{state: st, events: es, cfg: cfg}
}

// ShowKeys handles GET /api/settings/keys. Secrets are masked; only the
// first and last four characters survive.
func (h *SettingsHandler) ShowKeys(w http.ResponseWriter, r *http.Request) {
	keys := h.state.Keys(r.Context())
	writeJSONSuccess(w, map[string]any{
		"keys": keys.Masked(),
	})
}

// updateKeysRequest is the POST /api/settings/keys payload. Blank fields
// leave the stored value untouched, so the dashboard can submit the form
// without re-entering every secret.
type updateKeysRequest struct {
	OpenAIAPIKey       string `json:"openai_api_key"`
	HFAPIKey           string `json:"hf_api_key"`
	BloggerBlogID      string `json:"blogger_blog_id"`
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRefreshToken string `json:"google_refresh_token"`
}

// applyKey overwrites dst when the submitted value is non-blank.
func applyKey(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

// UpdateKeys handles POST /api/settings/keys.
func (h *SettingsHandler) UpdateKeys(w http.ResponseWriter, r *http.Request) {
	var req updateKeysRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var updated model.APIKeys
	if err := h.state.Update(r.Context(), func(d *state.Data) (state.Docs, error) {
		applyKey(&d.Keys.OpenAIAPIKey, req.OpenAIAPIKey)
		applyKey(&d.Keys.HFAPIKey, req.HFAPIKey)
		applyKey(&d.Keys.BloggerBlogID, req.BloggerBlogID)
		applyKey(&d.Keys.GoogleClientID, req.GoogleClientID)
		applyKey(&d.Keys.GoogleClientSecret, req.GoogleClientSecret)
		applyKey(&d.Keys.GoogleRefreshToken, req.GoogleRefreshToken)
		d.Keys.Recompute()
		updated = d.Keys
		return state.DocKeys, nil
	}); err != nil {
		logAndInternalError(w, "failed to store api keys", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryConfig,
		"Provider credentials updated", middleware.GetClientIP(r), nil)

	writeJSONSuccess(w, map[string]any{
		"message": "Credentials saved",
		"keys":    updated.Masked(),
	})
}

// ShowConfig handles GET /api/settings/config.
func (h *SettingsHandler) ShowConfig(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read posting config", "error", err)
		return
	}
	writeJSONSuccess(w, map[string]any{
		"config": snap.Config,
	})
}

// UpdateConfig handles POST /api/settings/config. The configuration is
// replaced wholesale after validation.
func (h *SettingsHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req model.PostingConfig
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !model.ValidFrequency(req.Frequency) {
		writeJSONError(w, http.StatusBadRequest, "Frequency must be daily, weekly or hourly")
		return
	}
	if !schedule.ValidPostTime(req.PostTime) {
		writeJSONError(w, http.StatusBadRequest, "Post time must be HH:MM")
		return
	}
	if req.MaxPostsPerDay < 1 {
		writeJSONError(w, http.StatusBadRequest, "Max posts per day must be at least 1")
		return
	}
	if req.Content.MinWords < 1 || req.Content.MaxWords < req.Content.MinWords {
		writeJSONError(w, http.StatusBadRequest, "Word count range is invalid")
		return
	}

	if err := h.state.Update(r.Context(), func(d *state.Data) (state.Docs, error) {
		d.Config = req
		return state.DocConfig, nil
	}); err != nil {
		logAndInternalError(w, "failed to store posting config", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryConfig,
		"Posting configuration updated", middleware.GetClientIP(r),
		map[string]any{
			"frequency":         req.Frequency,
			"post_time":         req.PostTime,
			"max_posts_per_day": req.MaxPostsPerDay,
		})

	writeJSONSuccess(w, map[string]any{
		"message": "Configuration saved",
		"config":  req,
	})
}

// providerStatus is one entry of the settings test response.
type providerStatus struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
}

// TestProviders handles POST /api/settings/test. It reports whether each
// collaborator has the credentials it needs; no live calls are made.
func (h *SettingsHandler) TestProviders(w http.ResponseWriter, r *http.Request) {
	keys := h.state.Keys(r.Context())

	content := providerStatus{Provider: h.cfg.ContentProvider}
	switch h.cfg.ContentProvider {
	case "mock":
		content.Configured = true
	default:
		content.Configured = keys.OpenAIAPIKey != ""
	}

	image := providerStatus{Provider: h.cfg.ImageProvider}
	switch h.cfg.ImageProvider {
	case "mock":
		image.Configured = true
	case "openai":
		image.Configured = keys.OpenAIAPIKey != ""
	default:
		image.Configured = keys.HFAPIKey != ""
	}

	blog := providerStatus{Provider: h.cfg.BlogProvider}
	switch h.cfg.BlogProvider {
	case "mock":
		blog.Configured = true
	default:
		blog.Configured = keys.BloggerBlogID != "" &&
			keys.GoogleClientID != "" &&
			keys.GoogleClientSecret != "" &&
			keys.GoogleRefreshToken != ""
	}

	plagiarism := providerStatus{Provider: "search"}
	plagiarism.Configured = h.cfg.SearchAPIKey != ""

	writeJSONSuccess(w, map[string]any{
		"providers": map[string]providerStatus{
			"content":    content,
			"image":      image,
			"blog":       blog,
			"plagiarism": plagiarism,
		},
	})
}
