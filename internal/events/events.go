// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package events records audit entries for the activity log.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olegiv/autopost-go/internal/model"
)

// Service writes and reads the events table.
type Service struct {
	db *sql.DB
}

// NewService creates an event service on the shared database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Log creates one event entry.
func (s *Service) Log(ctx context.Context, level, category, message, ipAddress string, metadata map[string]any) error {
	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, metadata, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		level, category, message, metadataJSON, ipAddress, time.Now())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *Service) LogInfo(ctx context.Context, category, message, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, model.EventLevelInfo, category, message, ipAddress, metadata)
}

// LogWarning logs a warning-level event.
func (s *Service) LogWarning(ctx context.Context, category, message, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, model.EventLevelWarning, category, message, ipAddress, metadata)
}

// LogError logs an error-level event.
func (s *Service) LogError(ctx context.Context, category, message, ipAddress string, metadata map[string]any) error {
	return s.Log(ctx, model.EventLevelError, category, message, ipAddress, metadata)
}

// List returns a page of events, newest first. Empty level and category
// match everything.
func (s *Service) List(ctx context.Context, level, category string, limit, offset int) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, level, category, message, metadata, ip_address, created_at
		FROM events
		WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		level, level, category, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Level, &ev.Category, &ev.Message, &ev.Metadata, &ev.IPAddress, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Count returns how many events match the filters.
func (s *Service) Count(ctx context.Context, level, category string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM events
		WHERE (? = '' OR level = ?) AND (? = '' OR category = ?)`,
		level, level, category, category).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("delete old events: %w", err)
	}
	return nil
}
