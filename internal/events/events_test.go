// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/autopost-go/internal/model"
)

func setupEventTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Create events table (matches schema in migrations)
	_, err = db.Exec(`
		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			ip_address TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("failed to create events table: %v", err)
	}

	return db
}

func TestLog(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	ctx := context.Background()

	err := svc.Log(ctx, model.EventLevelInfo, model.EventCategoryUpload, "Titles ingested", "192.168.1.100", map[string]any{
		"count": 12,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	var level, category, message, metadata, ipAddress string
	err = db.QueryRow("SELECT level, category, message, metadata, ip_address FROM events").Scan(&level, &category, &message, &metadata, &ipAddress)
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	if level != "info" {
		t.Errorf("level = %q, want %q", level, "info")
	}
	if category != "upload" {
		t.Errorf("category = %q, want %q", category, "upload")
	}
	if message != "Titles ingested" {
		t.Errorf("message = %q, want %q", message, "Titles ingested")
	}
	if metadata != `{"count":12}` {
		t.Errorf("metadata = %q, want %q", metadata, `{"count":12}`)
	}
	if ipAddress != "192.168.1.100" {
		t.Errorf("ip_address = %q, want %q", ipAddress, "192.168.1.100")
	}
}

func TestLogNilMetadata(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	err := svc.Log(context.Background(), model.EventLevelInfo, model.EventCategoryAuth, "Test", "", nil)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	var metadata string
	if err := db.QueryRow("SELECT metadata FROM events").Scan(&metadata); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if metadata != "{}" {
		t.Errorf("metadata = %q, want %q", metadata, "{}")
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFn    func(*Service, context.Context) error
		expected string
	}{
		{"info", func(svc *Service, ctx context.Context) error {
			return svc.LogInfo(ctx, model.EventCategorySchedule, "Scan finished", "", nil)
		}, "info"},
		{"warning", func(svc *Service, ctx context.Context) error {
			return svc.LogWarning(ctx, model.EventCategorySystem, "Low disk space", "", nil)
		}, "warning"},
		{"error", func(svc *Service, ctx context.Context) error {
			return svc.LogError(ctx, model.EventCategoryAuth, "Login failed", "", nil)
		}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupEventTestDB(t)
			svc := NewService(db)

			if err := tt.logFn(svc, context.Background()); err != nil {
				t.Fatalf("log function failed: %v", err)
			}

			var level string
			if err := db.QueryRow("SELECT level FROM events").Scan(&level); err != nil {
				t.Fatalf("failed to read event: %v", err)
			}
			if level != tt.expected {
				t.Errorf("level = %q, want %q", level, tt.expected)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	ctx := context.Background()

	if err := svc.LogError(ctx, model.EventCategoryPublish, "Publish failed", "", nil); err != nil {
		t.Fatalf("LogError failed: %v", err)
	}
	if err := svc.LogInfo(ctx, model.EventCategoryPublish, "Post published", "", nil); err != nil {
		t.Fatalf("LogInfo failed: %v", err)
	}
	if err := svc.LogInfo(ctx, model.EventCategoryAuth, "Login succeeded", "", nil); err != nil {
		t.Fatalf("LogInfo failed: %v", err)
	}

	all, err := svc.List(ctx, "", "", 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d events, want 3", len(all))
	}

	errorsOnly, err := svc.List(ctx, model.EventLevelError, "", 10, 0)
	if err != nil {
		t.Fatalf("List with level filter failed: %v", err)
	}
	if len(errorsOnly) != 1 {
		t.Fatalf("List returned %d error events, want 1", len(errorsOnly))
	}
	if errorsOnly[0].Message != "Publish failed" {
		t.Errorf("Message = %q, want %q", errorsOnly[0].Message, "Publish failed")
	}

	publishOnly, err := svc.List(ctx, "", model.EventCategoryPublish, 10, 0)
	if err != nil {
		t.Fatalf("List with category filter failed: %v", err)
	}
	if len(publishOnly) != 2 {
		t.Fatalf("List returned %d publish events, want 2", len(publishOnly))
	}

	both, err := svc.List(ctx, model.EventLevelInfo, model.EventCategoryPublish, 10, 0)
	if err != nil {
		t.Fatalf("List with both filters failed: %v", err)
	}
	if len(both) != 1 {
		t.Fatalf("List returned %d events, want 1", len(both))
	}
}

func TestListNewestFirst(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		if err := svc.LogInfo(ctx, model.EventCategorySystem, msg, "", nil); err != nil {
			t.Fatalf("LogInfo failed: %v", err)
		}
	}

	got, err := svc.List(ctx, "", "", 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d events, want 2", len(got))
	}
	if got[0].Message != "third" {
		t.Errorf("first page leads with %q, want %q", got[0].Message, "third")
	}

	next, err := svc.List(ctx, "", "", 2, 2)
	if err != nil {
		t.Fatalf("List with offset failed: %v", err)
	}
	if len(next) != 1 {
		t.Fatalf("second page has %d events, want 1", len(next))
	}
	if next[0].Message != "first" {
		t.Errorf("second page leads with %q, want %q", next[0].Message, "first")
	}
}

func TestCount(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	ctx := context.Background()

	if err := svc.LogError(ctx, model.EventCategorySchedule, "Scan failed", "", nil); err != nil {
		t.Fatalf("LogError failed: %v", err)
	}
	if err := svc.LogInfo(ctx, model.EventCategorySchedule, "Scan finished", "", nil); err != nil {
		t.Fatalf("LogInfo failed: %v", err)
	}

	total, err := svc.Count(ctx, "", "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Count = %d, want 2", total)
	}

	errors, err := svc.Count(ctx, model.EventLevelError, "")
	if err != nil {
		t.Fatalf("Count with level filter failed: %v", err)
	}
	if errors != 1 {
		t.Errorf("Count = %d, want 1", errors)
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := setupEventTestDB(t)

	svc := NewService(db)
	ctx := context.Background()

	// Insert an old event directly
	_, err := db.Exec(`
		INSERT INTO events (level, category, message, metadata, created_at)
		VALUES ('info', 'system', 'Old event', '{}', ?)
	`, time.Now().Add(-31*24*time.Hour))
	if err != nil {
		t.Fatalf("failed to insert old event: %v", err)
	}

	if err := svc.LogInfo(ctx, model.EventCategorySystem, "Recent event", "", nil); err != nil {
		t.Fatalf("LogInfo failed: %v", err)
	}

	if err := svc.DeleteOldEvents(ctx, 30*24*time.Hour); err != nil {
		t.Fatalf("DeleteOldEvents failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if count != 1 {
		t.Errorf("event count after delete = %d, want 1", count)
	}

	var message string
	if err := db.QueryRow("SELECT message FROM events").Scan(&message); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if message != "Recent event" {
		t.Errorf("surviving event = %q, want %q", message, "Recent event")
	}
}
