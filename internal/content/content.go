// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content generates article drafts and the heuristics around them:
// keyword research, HTML formatting for the blog host, SEO scoring and the
// plagiarism check.
package content

import (
	"context"
	"errors"
	"strings"
)

// ErrNoAPIKey is returned by providers that need a credential that is not
// configured.
var ErrNoAPIKey = errors.New("api key not configured")

// Request describes the article to draft.
type Request struct {
	Title    string
	Keywords []string
	Language string // BCP 47 tag, e.g. "id" or "en"
	MinWords int
	MaxWords int
}

// Article is a generated draft. Body is markdown; FormatHTML renders it
// for the blog host.
type Article struct {
	Title           string
	Body            string
	MetaDescription string
	Keywords        []string
	WordCount       int
}

// Generator drafts articles. Implementations are selected by
// configuration; the mock keeps the pipeline runnable without credentials.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Article, error)
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
