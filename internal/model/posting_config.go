// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Posting frequencies
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyHourly = "hourly"
)

// ContentSettings holds the per-article generation toggles.
type ContentSettings struct {
	MinWords             int  `json:"min_words"`
	MaxWords             int  `json:"max_words"`
	AutoResearchKeywords bool `json:"auto_research_keywords"`
	AutoGenerateImages   bool `json:"auto_generate_images"`
	PlagiarismCheck      bool `json:"plagiarism_check"`
}

// PostingConfig is the singleton publishing configuration, mutated through
// the settings endpoint and persisted wholesale. PostDays is carried for
// the settings UI but is not consulted by the slot assignment loop.
type PostingConfig struct {
	Frequency      string          `json:"frequency"`
	PostTime       string          `json:"post_time"`
	PostDays       []string        `json:"post_days"`
	MaxPostsPerDay int             `json:"max_posts_per_day"`
	Content        ContentSettings `json:"content_settings"`
}

// DefaultPostingConfig returns the configuration used until the operator
// saves their own.
func DefaultPostingConfig() PostingConfig {
	return PostingConfig{
		Frequency:      FrequencyDaily,
		PostTime:       "10:00",
		PostDays:       []string{"monday", "wednesday", "friday"},
		MaxPostsPerDay: 2,
		Content: ContentSettings{
			MinWords:             1000,
			MaxWords:             2000,
			AutoResearchKeywords: true,
			AutoGenerateImages:   true,
			PlagiarismCheck:      true,
		},
	}
}

// ValidFrequency reports whether s is a recognized posting frequency.
func ValidFrequency(s string) bool {
	switch s {
	case FrequencyDaily, FrequencyWeekly, FrequencyHourly:
		return true
	}
	return false
}
