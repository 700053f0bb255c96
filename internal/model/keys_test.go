// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short", "abc", "***"},
		{"exactly eight", "12345678", "***"},
		{"long", "sk-proj-abcdefgh1234", "sk-p***1234"},
		{"nine chars", "123456789", "1234***6789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskSecret(tt.input); got != tt.want {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAPIKeysRecompute(t *testing.T) {
	tests := []struct {
		name string
		keys APIKeys
		want bool
	}{
		{"all empty", APIKeys{}, false},
		{"openai only", APIKeys{OpenAIAPIKey: "sk-test"}, true},
		{"hf only", APIKeys{HFAPIKey: "hf_test"}, true},
		{"blog id only", APIKeys{BloggerBlogID: "12345"}, true},
		{"google creds alone do not configure", APIKeys{GoogleClientID: "id", GoogleClientSecret: "secret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.keys.Recompute()
			if tt.keys.IsConfigured != tt.want {
				t.Errorf("IsConfigured = %v, want %v", tt.keys.IsConfigured, tt.want)
			}
		})
	}
}

func TestAPIKeysMasked(t *testing.T) {
	keys := APIKeys{
		OpenAIAPIKey:       "sk-proj-abcdefgh1234",
		HFAPIKey:           "hf_abcdefghij",
		BloggerBlogID:      "8675309",
		GoogleClientID:     "client-id.apps.googleusercontent.com",
		GoogleClientSecret: "GOCSPX-verysecret",
	}
	keys.Recompute()

	masked := keys.Masked()

	if masked.OpenAIAPIKey != "sk-p***1234" {
		t.Errorf("OpenAIAPIKey = %q, want masked", masked.OpenAIAPIKey)
	}
	if masked.HFAPIKey != "hf_a***ghij" {
		t.Errorf("HFAPIKey = %q, want masked", masked.HFAPIKey)
	}
	if masked.BloggerBlogID != "8675309" {
		t.Errorf("BloggerBlogID = %q, want unmasked", masked.BloggerBlogID)
	}
	if masked.GoogleClientID != keys.GoogleClientID {
		t.Errorf("GoogleClientID = %q, want unmasked", masked.GoogleClientID)
	}
	if masked.GoogleClientSecret == keys.GoogleClientSecret {
		t.Error("GoogleClientSecret was not masked")
	}

	// Masking must not touch the original.
	if keys.OpenAIAPIKey != "sk-proj-abcdefgh1234" {
		t.Error("Masked() mutated the receiver")
	}
}

func TestNextPostIDBasic(t *testing.T) {
	if got := NextPostID(nil); got != 1 {
		t.Errorf("NextPostID(nil) = %d, want 1", got)
	}

	posts := []ScheduledPost{{ID: 3}, {ID: 1}, {ID: 7}}
	if got := NextPostID(posts); got != 8 {
		t.Errorf("NextPostID = %d, want 8", got)
	}
}
