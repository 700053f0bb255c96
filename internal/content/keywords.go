// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/olegiv/autopost-go/internal/cache"
	"github.com/olegiv/autopost-go/internal/util"
)

const (
	maxBaseKeywords     = 10
	maxLongTailKeywords = 5
	keywordCacheTTL     = 24 * time.Hour
)

var wordPattern = regexp.MustCompile(`\w+`)

// stopwords per language tag, filtered out of title words before they
// become keywords.
var stopwords = map[string]map[string]struct{}{
	"id": toSet("dan", "atau", "di", "ke", "dari", "untuk", "pada", "dengan"),
	"en": toSet("the", "and", "for", "with", "from", "into", "that", "this"),
}

type longTailTemplate struct {
	format string
	// skip suppresses the template for keywords already containing the
	// word, avoiding phrasings like "cara cara trading".
	skip string
}

// longTail holds per-language templates applied to base keywords.
var longTail = map[string][]longTailTemplate{
	"id": {
		{format: "%s untuk pemula"},
		{format: "panduan %s"},
		{format: "cara %s", skip: "cara"},
	},
	"en": {
		{format: "%s for beginners"},
		{format: "%s guide"},
		{format: "how to %s", skip: "how"},
	},
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Researcher derives keyword lists from post titles. Results are cached
// so repeated scheduling of similar titles stays cheap.
type Researcher struct {
	cache    cache.Cache
	language string
	logger   *slog.Logger
}

// NewResearcher creates a keyword researcher for the given language tag.
func NewResearcher(c cache.Cache, language string, logger *slog.Logger) *Researcher {
	return &Researcher{cache: c, language: normalizeLanguage(language), logger: logger}
}

// Research returns base keywords extracted from the title followed by up
// to five long-tail variants.
func (r *Researcher) Research(ctx context.Context, title string) []string {
	cacheKey := "keywords:" + r.language + ":" + util.Slugify(title)
	if data, err := r.cache.Get(ctx, cacheKey); err == nil {
		var cached []string
		if json.Unmarshal(data, &cached) == nil {
			return cached
		}
	}

	keywords := buildKeywords(title, r.language)

	if data, err := json.Marshal(keywords); err == nil {
		if err := r.cache.Set(ctx, cacheKey, data, keywordCacheTTL); err != nil {
			r.logger.Debug("keyword cache write failed", "error", err)
		}
	}
	return keywords
}

func buildKeywords(title, language string) []string {
	base := ExtractKeywords(title, language)

	var tails []string
	for _, tpl := range longTail[language] {
		for _, kw := range base {
			if tpl.skip != "" && strings.Contains(strings.ToLower(kw), tpl.skip) {
				continue
			}
			tails = append(tails, fmt.Sprintf(tpl.format, kw))
		}
	}
	if len(tails) > maxLongTailKeywords {
		tails = tails[:maxLongTailKeywords]
	}
	return append(base, tails...)
}

// ExtractKeywords lowercases the title, drops stopwords and words of at
// most two characters, and keeps the first ten survivors.
func ExtractKeywords(title, language string) []string {
	language = normalizeLanguage(language)
	stops := stopwords[language]

	var keywords []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(title), -1) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stops[word]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxBaseKeywords {
			break
		}
	}
	return keywords
}

func normalizeLanguage(tag string) string {
	tag = strings.ToLower(tag)
	if i := strings.IndexByte(tag, '-'); i > 0 {
		tag = tag[:i]
	}
	if _, ok := longTail[tag]; !ok {
		return "id"
	}
	return tag
}
