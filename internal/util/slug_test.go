// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"crypto title", "Apa Itu Bitcoin? Panduan Lengkap", "apa-itu-bitcoin-panduan-lengkap"},
		{"accents", "Crème Brûlée Très Bon", "creme-brulee-tres-bon"},
		{"punctuation", "DeFi: Yield Farming (2026)", "defi-yield-farming-2026"},
		{"multiple spaces", "too   many    spaces", "too-many-spaces"},
		{"leading trailing", "  -- trimmed --  ", "trimmed"},
		{"cyrillic", "Биткоин для новичков", "bitkoin-dlia-novichkov"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer string", 7, "this is..."},
		{"", 5, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}
