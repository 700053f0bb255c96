// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/autopost-go/internal/track"
)

// StatsHandler serves the performance tracking aggregates.
type StatsHandler struct {
	tracker *track.Tracker
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(tracker *track.Tracker) *StatsHandler {
	return &StatsHandler{tracker: tracker}
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracker.Stats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to aggregate performance stats", "error", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"stats": stats,
	})
}
