// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/render"
	"github.com/olegiv/autopost-go/internal/scheduler"
	"github.com/olegiv/autopost-go/internal/state"
)

// DashboardHandler renders the operator dashboard.
type DashboardHandler struct {
	state    *state.Manager
	sched    *scheduler.Scheduler
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(st *state.Manager, sched *scheduler.Scheduler, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{state: st, sched: sched, renderer: renderer}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Counts        PostCounts
	Configured    bool
	Scheduler     scheduler.Status
	NextPost      *model.ScheduledPost
	RecentPosts   []model.ScheduledPost
	Config        model.PostingConfig
	TitlesTotal   int
	TitlesPending int
}

// recentPostsLimit caps the dashboard activity list.
const recentPostsLimit = 5

// Home handles GET / - the dashboard page.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to snapshot state", "error", err)
		return
	}

	data := DashboardData{
		Configured:    snap.Keys.IsConfigured,
		Scheduler:     h.sched.Status(),
		Config:        snap.Config,
		TitlesTotal:   len(snap.Titles),
		TitlesPending: model.CountPending(snap.Titles),
	}

	now := time.Now()
	for i := range snap.Posts {
		p := &snap.Posts[i]
		switch p.Status {
		case model.PostStatusScheduled:
			data.Counts.Scheduled++
			if p.PublishDate.After(now) && (data.NextPost == nil || p.PublishDate.Before(data.NextPost.PublishDate)) {
				next := *p
				data.NextPost = &next
			}
		case model.PostStatusPublished:
			data.Counts.Published++
		case model.PostStatusFailed:
			data.Counts.Failed++
		}
	}
	data.Counts.TitlesPending = data.TitlesPending

	recent := make([]model.ScheduledPost, len(snap.Posts))
	copy(recent, snap.Posts)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentPostsLimit {
		recent = recent[:recentPostsLimit]
	}
	data.RecentPosts = recent

	if err := h.renderer.Render(w, r, "dashboard", render.TemplateData{
		Title:    "Dashboard",
		Data:     data,
		LoggedIn: true,
		Active:   "dashboard",
	}); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}
