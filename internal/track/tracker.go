// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package track records publication outcomes for the stats dashboard.
package track

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Record captures one published post.
type Record struct {
	PostID      int
	Title       string
	URL         string
	WordCount   int
	SEOScore    int
	Keywords    []string
	PublishedAt time.Time
}

// Visit is one dashboard page view.
type Visit struct {
	Path    string
	Browser string
	OS      string
	Device  string
	Country string
	IP      string
}

// Stats aggregates everything the stats endpoint reports.
type Stats struct {
	TotalPublished  int     `json:"total_published"`
	TotalWords      int     `json:"total_words"`
	AvgWordCount    float64 `json:"avg_word_count"`
	AvgSEOScore     float64 `json:"avg_seo_score"`
	PostsLast7Days  int     `json:"posts_last_7_days"`
	TrackedKeywords int     `json:"tracked_keywords"`
	VisitsLast7Days int     `json:"visits_last_7_days"`
}

// Tracker writes analytics rows. All methods are safe for concurrent
// use through the underlying pool.
type Tracker struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a tracker on the shared database.
func New(db *sql.DB, logger *slog.Logger) *Tracker {
	return &Tracker{db: db, logger: logger}
}

// Track stores the performance row for a published post plus one
// placement row per keyword.
func (t *Tracker) Track(ctx context.Context, rec Record) error {
	now := time.Now()
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO post_performance (post_id, url, title, word_count, seo_score, published_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.PostID, rec.URL, rec.Title, rec.WordCount, rec.SEOScore, rec.PublishedAt, now)
	if err != nil {
		return fmt.Errorf("insert post performance: %w", err)
	}

	for _, keyword := range rec.Keywords {
		_, err := t.db.ExecContext(ctx, `
			INSERT INTO seo_performance (url, keyword, recorded_at)
			VALUES (?, ?, ?)`,
			rec.URL, keyword, now)
		if err != nil {
			return fmt.Errorf("insert seo performance: %w", err)
		}
	}

	t.logger.Info("post performance tracked",
		"post_id", rec.PostID,
		"url", rec.URL,
		"keywords", len(rec.Keywords))
	return nil
}

// RecordVisit stores one dashboard page view.
func (t *Tracker) RecordVisit(ctx context.Context, v Visit) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO visits (path, browser, os, device, country, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Path, v.Browser, v.OS, v.Device, v.Country, v.IP, time.Now())
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

// Stats aggregates the analytics tables.
func (t *Tracker) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	weekAgo := time.Now().AddDate(0, 0, -7)

	err := t.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(word_count), 0),
		       COALESCE(AVG(word_count), 0),
		       COALESCE(AVG(seo_score), 0)
		FROM post_performance`).
		Scan(&stats.TotalPublished, &stats.TotalWords, &stats.AvgWordCount, &stats.AvgSEOScore)
	if err != nil {
		return nil, fmt.Errorf("aggregate post performance: %w", err)
	}

	err = t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_performance WHERE published_at >= ?`, weekAgo).
		Scan(&stats.PostsLast7Days)
	if err != nil {
		return nil, fmt.Errorf("count recent posts: %w", err)
	}

	err = t.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT keyword) FROM seo_performance`).
		Scan(&stats.TrackedKeywords)
	if err != nil {
		return nil, fmt.Errorf("count keywords: %w", err)
	}

	err = t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM visits WHERE created_at >= ?`, weekAgo).
		Scan(&stats.VisitsLast7Days)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}

	return stats, nil
}
