// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/publish"
	"github.com/olegiv/autopost-go/internal/scheduler"
	"github.com/olegiv/autopost-go/internal/state"
)

func TestDashboardRenders(t *testing.T) {
	st := testState(t)
	sm := testSessionManager(t)
	sched := scheduler.New(st, &publish.Pipeline{Logger: discardLogger()}, time.Minute, discardLogger())
	h := NewDashboardHandler(st, sched, testRenderer(t, sm))

	err := st.Update(context.Background(), func(d *state.Data) (state.Docs, error) {
		d.Posts = []model.ScheduledPost{
			{ID: 1, Title: "Upcoming", Status: model.PostStatusScheduled,
				PublishDate: time.Now().Add(48 * time.Hour), CreatedAt: time.Now()},
		}
		return state.DocPosts, nil
	})
	if err != nil {
		t.Fatalf("seed state: %v", err)
	}

	req := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	h.Home(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	if body := rec.Body.String(); !strings.Contains(body, "Dashboard") {
		t.Errorf("dashboard body missing title: %q", body)
	}
}
