// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schedule contains the pure scheduling logic: assigning pending
// titles to publish slots and deciding when a scheduled post is due.
package schedule

import (
	"fmt"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
)

// DefaultTolerance is how far ahead of its target a post may publish.
const DefaultTolerance = 10 * time.Minute

// Due reports whether a post targeted at target should publish at now.
// A post is due once now has advanced to within tolerance of the target;
// overdue posts (missed while the process was down) stay due until they
// are published or failed.
func Due(now, target time.Time, tolerance time.Duration) bool {
	return !target.After(now.Add(tolerance))
}

// DueIndexes returns the positions of due posts, preserving the insertion
// order of the list.
func DueIndexes(posts []model.ScheduledPost, now time.Time, tolerance time.Duration) []int {
	var due []int
	for i := range posts {
		if posts[i].Status == model.PostStatusScheduled && Due(now, posts[i].PublishDate, tolerance) {
			due = append(due, i)
		}
	}
	return due
}

// Assign plans a publish slot for every entry of pending, walking the list
// in order and filling up to cfg.MaxPostsPerDay slots per date at the
// configured time-of-day. The first date considered is the day after now;
// IDs are assigned sequentially starting at firstID.
func Assign(pending []model.BulkTitle, cfg model.PostingConfig, now time.Time, firstID int) []model.ScheduledPost {
	if len(pending) == 0 {
		return nil
	}

	perDay := cfg.MaxPostsPerDay
	if perDay < 1 {
		perDay = 1
	}
	hour, minute := ParsePostTime(cfg.PostTime)

	posts := make([]model.ScheduledPost, 0, len(pending))
	day := now.AddDate(0, 0, 1)
	onDay := 0
	for i, entry := range pending {
		if onDay >= perDay {
			day = day.AddDate(0, 0, 1)
			onDay = 0
		}
		publishAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
		posts = append(posts, model.ScheduledPost{
			ID:          firstID + i,
			Title:       entry.Title,
			Keywords:    entry.Keywords,
			PublishDate: publishAt,
			Status:      model.PostStatusScheduled,
			CreatedAt:   now,
		})
		onDay++
	}
	return posts
}

// ParsePostTime parses a "HH:MM" time-of-day. Unparseable values fall back
// to the default posting hour.
func ParsePostTime(s string) (hour, minute int) {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 || h < 0 || h > 23 || m < 0 || m > 59 {
		return 10, 0
	}
	return h, m
}

// ValidPostTime reports whether s is an acceptable "HH:MM" value.
func ValidPostTime(s string) bool {
	var h, m int
	n, err := fmt.Sscanf(s, "%d:%d", &h, &m)
	return err == nil && n == 2 && h >= 0 && h <= 23 && m >= 0 && m <= 59
}
