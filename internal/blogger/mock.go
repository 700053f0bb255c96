// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package blogger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/olegiv/autopost-go/internal/util"
)

// Mock records published posts and fabricates blogspot URLs. It backs
// development setups and tests.
type Mock struct {
	blogName string

	mu    sync.Mutex
	posts []Post
}

// NewMock creates a recording publisher for the given blog name.
func NewMock(blogName string) *Mock {
	if blogName == "" {
		blogName = "example"
	}
	return &Mock{blogName: blogName}
}

// Publish records the post and returns a deterministic URL.
func (m *Mock) Publish(_ context.Context, post Post) (string, error) {
	m.mu.Lock()
	m.posts = append(m.posts, post)
	m.mu.Unlock()

	slug := util.Slugify(post.Title)
	if slug == "" {
		slug = "post"
	}
	now := time.Now()
	return fmt.Sprintf("https://%s.blogspot.com/%04d/%02d/%s.html",
		m.blogName, now.Year(), now.Month(), slug), nil
}

// Posts returns a copy of everything published so far.
func (m *Mock) Posts() []Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Post, len(m.posts))
	copy(out, m.posts)
	return out
}
