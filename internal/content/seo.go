// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Reading levels derived from average sentence length.
const (
	ReadingEasy   = "easy"
	ReadingMedium = "medium"
	ReadingHard   = "hard"
)

// KeywordStat describes how often one keyword occurs in the text.
type KeywordStat struct {
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// HeadingCount tallies the heading levels found in the rendered article.
type HeadingCount struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
}

// SEOReport is the outcome of analyzing one rendered article.
type SEOReport struct {
	Score           int                    `json:"score"`
	WordCount       int                    `json:"word_count"`
	Headings        HeadingCount           `json:"headings"`
	KeywordDensity  map[string]KeywordStat `json:"keyword_density"`
	AvgSentenceLen  float64                `json:"avg_sentence_length"`
	ReadingLevel    string                 `json:"reading_level"`
	Recommendations []string               `json:"recommendations"`
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// AnalyzeSEO scores rendered article HTML against the title it was
// generated for. Scoring: 25 points for length, 20 for heading
// structure, 25 for readability and up to 30 for keyword density.
func AnalyzeSEO(articleHTML, title string) (*SEOReport, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(articleHTML))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	text := doc.Text()
	report := &SEOReport{
		WordCount: CountWords(text),
		Headings: HeadingCount{
			H1: doc.Find("h1").Length(),
			H2: doc.Find("h2").Length(),
			H3: doc.Find("h3").Length(),
		},
		KeywordDensity: keywordDensity(text, title),
	}
	report.AvgSentenceLen = avgSentenceLength(text)
	report.ReadingLevel = readingLevel(report.AvgSentenceLen)
	report.Score = seoScore(report)
	report.Recommendations = recommendations(report)
	return report, nil
}

// keywordDensity measures the five longest-than-three-letter title words
// against the article text. Density is occurrences per hundred words.
func keywordDensity(text, title string) map[string]KeywordStat {
	var keywords []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(title), -1) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
		if len(keywords) == 5 {
			break
		}
	}

	lower := strings.ToLower(text)
	totalWords := CountWords(lower)

	density := make(map[string]KeywordStat, len(keywords))
	for _, kw := range keywords {
		count := strings.Count(lower, kw)
		stat := KeywordStat{Count: count}
		if totalWords > 0 {
			stat.Density = float64(count) / float64(totalWords) * 100
		}
		density[kw] = stat
	}
	return density
}

func avgSentenceLength(text string) float64 {
	words := CountWords(text)
	var sentences int
	for _, part := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		return 0
	}
	return float64(words) / float64(sentences)
}

func readingLevel(avgSentenceLen float64) string {
	switch {
	case avgSentenceLen > 20:
		return ReadingHard
	case avgSentenceLen >= 15:
		return ReadingMedium
	default:
		return ReadingEasy
	}
}

func seoScore(r *SEOReport) int {
	var score int
	switch {
	case r.WordCount >= 1000:
		score += 25
	case r.WordCount >= 500:
		score += 15
	}
	if r.Headings.H2 >= 3 {
		score += 20
	}
	if r.ReadingLevel == ReadingMedium {
		score += 25
	}

	var goodDensity int
	for _, stat := range r.KeywordDensity {
		if stat.Density >= 0.5 && stat.Density <= 2.5 {
			goodDensity++
		}
	}
	score += min(goodDensity*10, 30)

	return min(score, 100)
}

func recommendations(r *SEOReport) []string {
	var recs []string
	if r.WordCount < 1000 {
		recs = append(recs, "Grow the article to at least 1000 words")
	}
	if r.Headings.H2 < 3 {
		recs = append(recs, "Add more H2 subheadings")
	}
	if r.AvgSentenceLen > 25 {
		recs = append(recs, "Shorten sentences to improve readability")
	}
	for kw, stat := range r.KeywordDensity {
		switch {
		case stat.Density < 0.5:
			recs = append(recs, fmt.Sprintf("Use the keyword %q more often", kw))
		case stat.Density > 2.5:
			recs = append(recs, fmt.Sprintf("Reduce overuse of the keyword %q", kw))
		}
	}
	return recs
}
