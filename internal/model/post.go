// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the persisted records of the publishing system:
// scheduled posts, bulk titles, the posting configuration and the
// provider credential set.
package model

import "time"

// Scheduled post statuses
const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// ScheduledPost is a title committed to a publish timestamp. It is created
// by manual submission or by bulk scheduling, mutated only by the publish
// pipeline, and never deleted.
type ScheduledPost struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Keywords    []string   `json:"keywords,omitempty"`
	PublishDate time.Time  `json:"publish_date"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	URL         string     `json:"url,omitempty"`
	WordCount   int        `json:"word_count,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// IsScheduled returns true if the post is still waiting to publish.
func (p *ScheduledPost) IsScheduled() bool {
	return p.Status == PostStatusScheduled
}

// IsPublished returns true if the post has been published.
func (p *ScheduledPost) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// MarkPublished records a successful publish outcome.
func (p *ScheduledPost) MarkPublished(at time.Time, url string, wordCount int) {
	p.Status = PostStatusPublished
	p.PublishedAt = &at
	p.URL = url
	p.WordCount = wordCount
	p.Error = ""
}

// MarkFailed records a failed publish attempt.
func (p *ScheduledPost) MarkFailed(err error) {
	p.Status = PostStatusFailed
	p.Error = err.Error()
}

// NextPostID returns the identifier for a newly created post. IDs are
// sequential integers; the maximum is scanned rather than using len+1 so
// that IDs stay unique even if the persisted file was edited by hand.
func NextPostID(posts []ScheduledPost) int {
	maxID := 0
	for i := range posts {
		if posts[i].ID > maxID {
			maxID = posts[i].ID
		}
	}
	return maxID + 1
}
