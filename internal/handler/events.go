// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/model"
)

// EventsHandler serves the activity log.
type EventsHandler struct {
	events *events.Service
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(es *events.Service) *EventsHandler {
	return &EventsHandler{events: es}
}

// List handles GET /api/events. Entries come back newest first; level and
// category query parameters filter, page and per_page paginate.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	category := r.URL.Query().Get("category")
	page, perPage := parsePagination(r)

	total, err := h.events.Count(r.Context(), level, category)
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	entries, err := h.events.List(r.Context(), level, category, perPage, (page-1)*perPage)
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}
	if entries == nil {
		entries = []model.Event{}
	}

	writeJSONSuccess(w, map[string]any{
		"events":   entries,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}
