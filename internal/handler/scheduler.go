// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"

	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/scheduler"
)

// SchedulerHandler exposes the publish poller controls.
type SchedulerHandler struct {
	sched  *scheduler.Scheduler
	events *events.Service

	// base outlives any request; a restarted poller must keep ticking
	// after the triggering request ends.
	base context.Context
}

// NewSchedulerHandler creates a new SchedulerHandler. base is the
// application lifetime context the poller runs under.
func NewSchedulerHandler(sched *scheduler.Scheduler, base context.Context, es *events.Service) *SchedulerHandler {
	return &SchedulerHandler{sched: sched, events: es, base: base}
}

// Trigger handles POST /api/scheduler/trigger. It runs one synchronous
// scan and reports what it processed.
func (h *SchedulerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.sched.RunOnce(r.Context())
	if err != nil {
		logAndInternalError(w, "manual publish scan failed", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategoryPublish,
		"Publish scan triggered manually", middleware.GetClientIP(r),
		map[string]any{"due": result.Due, "published": result.Published, "failed": result.Failed})

	writeJSONSuccess(w, map[string]any{
		"message":   "Scan complete",
		"due":       result.Due,
		"published": result.Published,
		"failed":    result.Failed,
	})
}

// Restart handles POST /api/scheduler/restart.
func (h *SchedulerHandler) Restart(w http.ResponseWriter, r *http.Request) {
	if err := h.sched.Restart(h.base); err != nil {
		logAndInternalError(w, "scheduler restart failed", "error", err)
		return
	}

	_ = h.events.LogInfo(r.Context(), model.EventCategorySystem,
		"Scheduler restarted", middleware.GetClientIP(r), nil)

	writeJSONSuccess(w, map[string]any{
		"message": "Scheduler restarted",
		"status":  h.sched.Status(),
	})
}

// Status handles GET /api/scheduler/status.
func (h *SchedulerHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"status": h.sched.Status(),
	})
}
