// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// APIKeys holds the external provider credentials. IsConfigured is derived,
// never set directly: it is true when at least one of the content, image or
// blog credentials is present, and is recomputed on every update.
type APIKeys struct {
	OpenAIAPIKey       string `json:"openai_api_key"`
	HFAPIKey           string `json:"hf_api_key"`
	BloggerBlogID      string `json:"blogger_blog_id"`
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRefreshToken string `json:"google_refresh_token"`
	IsConfigured       bool   `json:"is_configured"`
}

// Recompute refreshes the derived IsConfigured flag.
func (k *APIKeys) Recompute() {
	k.IsConfigured = k.OpenAIAPIKey != "" || k.HFAPIKey != "" || k.BloggerBlogID != ""
}

// Masked returns a copy safe to return to clients: secret values keep only
// their first and last four characters. The blog ID and OAuth client ID are
// identifiers, not secrets, and pass through unchanged.
func (k APIKeys) Masked() APIKeys {
	k.OpenAIAPIKey = MaskSecret(k.OpenAIAPIKey)
	k.HFAPIKey = MaskSecret(k.HFAPIKey)
	k.GoogleClientSecret = MaskSecret(k.GoogleClientSecret)
	k.GoogleRefreshToken = MaskSecret(k.GoogleRefreshToken)
	return k
}

// MaskSecret hides the middle of a credential. Values of eight characters
// or fewer are fully masked; empty values stay empty.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
