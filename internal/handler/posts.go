// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/state"
)

// PostsHandler handles the scheduled posts API.
type PostsHandler struct {
	state  *state.Manager
	events *events.Service
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(st *state.Manager, es *events.Service) *PostsHandler {
	return &PostsHandler{state: st, events: es}
}

// List handles GET /api/posts. Posts are returned newest first, paginated
// with page and per_page query parameters.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read scheduled posts", "error", err)
		return
	}

	posts := make([]model.ScheduledPost, len(snap.Posts))
	copy(posts, snap.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	page, perPage := parsePagination(r)
	start, end := pageBounds(page, perPage, len(posts))

	window := posts[start:end]
	if window == nil {
		window = []model.ScheduledPost{}
	}

	writeJSONSuccess(w, map[string]any{
		"posts":       window,
		"page":        page,
		"per_page":    perPage,
		"total":       len(posts),
		"total_pages": (len(posts) + perPage - 1) / perPage,
	})
}

// createPostRequest is the POST /api/posts payload.
type createPostRequest struct {
	Title       string   `json:"title"`
	PublishDate string   `json:"publish_date"`
	Keywords    []string `json:"keywords"`
}

// publishDateLayouts are the accepted publish_date formats, tried in order.
var publishDateLayouts = []string{time.RFC3339, "2006-01-02 15:04"}

// parsePublishDate parses a publish date in RFC 3339 or the dashboard's
// "YYYY-MM-DD HH:MM" local form.
func parsePublishDate(s string) (time.Time, error) {
	for _, layout := range publishDateLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized publish date %q", s)
}

// Create handles POST /api/posts. The new post starts scheduled, whatever
// its publish date; past dates simply become due on the next scan.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSONError(w, http.StatusBadRequest, "Title is required")
		return
	}

	publishAt, err := parsePublishDate(req.PublishDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Publish date must be RFC 3339 or \"YYYY-MM-DD HH:MM\"")
		return
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, k := range req.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	var created model.ScheduledPost
	if err := h.state.Update(r.Context(), func(d *state.Data) (state.Docs, error) {
		created = model.ScheduledPost{
			ID:          model.NextPostID(d.Posts),
			Title:       req.Title,
			Keywords:    keywords,
			PublishDate: publishAt,
			Status:      model.PostStatusScheduled,
			CreatedAt:   time.Now(),
		}
		d.Posts = append(d.Posts, created)
		return state.DocPosts, nil
	}); err != nil {
		logAndInternalError(w, "failed to store new post", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategorySchedule,
		"Post scheduled: "+created.Title,
		middleware.GetClientIP(r),
		map[string]any{"post_id": created.ID, "publish_date": created.PublishDate.Format(time.RFC3339)})

	writeJSONSuccess(w, map[string]any{
		"message": "Post scheduled",
		"post":    created,
	})
}
