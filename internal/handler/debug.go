// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/autopost-go/internal/config"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/scheduler"
	"github.com/olegiv/autopost-go/internal/state"
	"github.com/olegiv/autopost-go/internal/store"
	"github.com/olegiv/autopost-go/internal/version"
)

// DebugHandler serves the operator debug snapshot.
type DebugHandler struct {
	state     *state.Manager
	sched     *scheduler.Scheduler
	store     *store.Store
	cfg       *config.Config
	startTime time.Time
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(st *state.Manager, sched *scheduler.Scheduler, fileStore *store.Store, cfg *config.Config, startTime time.Time) *DebugHandler {
	return &DebugHandler{
		state:     st,
		sched:     sched,
		store:     fileStore,
		cfg:       cfg,
		startTime: startTime,
	}
}

// Debug handles GET /debug. One JSON page with everything needed to
// diagnose a stuck installation: counts, poller state, the posting
// configuration and where the data lives. Secrets are masked.
func (h *DebugHandler) Debug(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to snapshot state", "error", err)
		return
	}

	counts := PostCounts{}
	for i := range snap.Posts {
		switch snap.Posts[i].Status {
		case model.PostStatusScheduled:
			counts.Scheduled++
		case model.PostStatusPublished:
			counts.Published++
		case model.PostStatusFailed:
			counts.Failed++
		}
	}
	counts.TitlesPending = model.CountPending(snap.Titles)

	writeJSONSuccess(w, map[string]any{
		"build":     version.Get(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"counts":    counts,
		"scheduler": h.sched.Status(),
		"config":    snap.Config,
		"keys":      snap.Keys.Masked(),
		"paths": map[string]string{
			"data_dir": h.store.Dir(),
			"database": h.cfg.DBPath,
		},
		"environment": map[string]string{
			"env":              h.cfg.Env,
			"content_provider": h.cfg.ContentProvider,
			"image_provider":   h.cfg.ImageProvider,
			"blog_provider":    h.cfg.BlogProvider,
			"cache_backend":    h.cfg.CacheBackend,
			"language":         h.cfg.ContentLanguage,
		},
	})
}
