// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package blogger submits finished articles to the blog host.
package blogger

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when publishing is attempted without the
// full credential set.
var ErrNotConfigured = errors.New("blogger credentials not configured")

// Post is one article ready for publication.
type Post struct {
	Title  string
	HTML   string
	Labels []string
}

// Publisher pushes a post to the host and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, post Post) (string, error)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, post Post) (string, error)

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, post Post) (string, error) {
	return f(ctx, post)
}
