// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/ingest"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/schedule"
	"github.com/olegiv/autopost-go/internal/state"
)

// maxUploadSize bounds a bulk titles file. Titles are short lines; anything
// past a few megabytes is not a titles file.
const maxUploadSize = 5 << 20

// titlePreviewLimit is how many uploaded titles the response echoes back.
const titlePreviewLimit = 10

// TitlesHandler handles bulk title ingestion and scheduling.
type TitlesHandler struct {
	state  *state.Manager
	events *events.Service
}

// NewTitlesHandler creates a new TitlesHandler.
func NewTitlesHandler(st *state.Manager, es *events.Service) *TitlesHandler {
	return &TitlesHandler{state: st, events: es}
}

// Upload handles POST /api/bulk-upload. It accepts a multipart form with a
// .csv or .txt file in the "file" field and appends every parsed title to
// the bulk list as pending.
func (h *TitlesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	if !ingest.SupportedFile(header.Filename) {
		writeJSONError(w, http.StatusBadRequest, "Only .csv and .txt files are supported")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Could not read file")
		return
	}

	entries := ingest.Parse(header.Filename, data)
	if len(entries) == 0 {
		writeJSONError(w, http.StatusBadRequest, "No titles found in file")
		return
	}

	now := time.Now()
	added := make([]model.BulkTitle, 0, len(entries))
	for _, e := range entries {
		added = append(added, model.BulkTitle{
			Title:    e.Title,
			Keywords: e.Keywords,
			AddedAt:  now,
			Status:   model.TitleStatusPending,
		})
	}

	if err := h.state.Update(r.Context(), func(d *state.Data) (state.Docs, error) {
		d.Titles = append(d.Titles, added...)
		return state.DocTitles, nil
	}); err != nil {
		logAndInternalError(w, "failed to store uploaded titles", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryUpload,
		fmt.Sprintf("Uploaded %d titles from %s", len(added), header.Filename),
		middleware.GetClientIP(r),
		map[string]any{"count": len(added), "file": header.Filename})

	preview := make([]string, 0, titlePreviewLimit)
	for i := 0; i < len(added) && i < titlePreviewLimit; i++ {
		preview = append(preview, added[i].Title)
	}

	writeJSONSuccess(w, map[string]any{
		"message": fmt.Sprintf("%d titles uploaded", len(added)),
		"titles":  preview,
		"count":   len(added),
	})
}

// ScheduleBulk handles POST /api/schedule-bulk. Every pending title gets a
// publish slot: dates are filled in order starting tomorrow, up to the
// configured posts-per-day cap, all at the configured time-of-day.
func (h *TitlesHandler) ScheduleBulk(w http.ResponseWriter, r *http.Request) {
	var scheduled int

	if err := h.state.Update(r.Context(), func(d *state.Data) (state.Docs, error) {
		pending := make([]model.BulkTitle, 0, len(d.Titles))
		for i := range d.Titles {
			if d.Titles[i].IsPending() {
				pending = append(pending, d.Titles[i])
			}
		}
		if len(pending) == 0 {
			return 0, nil
		}

		posts := schedule.Assign(pending, d.Config, time.Now(), model.NextPostID(d.Posts))
		d.Posts = append(d.Posts, posts...)
		for i := range d.Titles {
			if d.Titles[i].IsPending() {
				d.Titles[i].Status = model.TitleStatusScheduled
			}
		}
		scheduled = len(posts)
		return state.DocPosts | state.DocTitles, nil
	}); err != nil {
		logAndInternalError(w, "failed to schedule pending titles", "error", err)
		return
	}

	if scheduled == 0 {
		writeJSONSuccess(w, map[string]any{
			"message":   "No pending titles to schedule",
			"scheduled": 0,
		})
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategorySchedule,
		fmt.Sprintf("Scheduled %d posts from bulk titles", scheduled),
		middleware.GetClientIP(r),
		map[string]any{"count": scheduled})

	writeJSONSuccess(w, map[string]any{
		"message":   fmt.Sprintf("%d posts scheduled", scheduled),
		"scheduled": scheduled,
	})
}

// List handles GET /api/bulk-titles.
func (h *TitlesHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to read bulk titles", "error", err)
		return
	}

	titles := snap.Titles
	if titles == nil {
		titles = []model.BulkTitle{}
	}

	writeJSONSuccess(w, map[string]any{
		"titles":  titles,
		"total":   len(titles),
		"pending": model.CountPending(titles),
	})
}
