// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Bulk title statuses
const (
	TitleStatusPending   = "pending"
	TitleStatusScheduled = "scheduled"
)

// BulkTitle is a title ingested from an uploaded file that has not yet
// been assigned a publish slot. When bulk scheduling consumes it, the
// title text is copied into the spawned ScheduledPost; the two records
// share no ownership afterwards.
type BulkTitle struct {
	Title    string    `json:"title"`
	Keywords []string  `json:"keywords"`
	AddedAt  time.Time `json:"added_at"`
	Status   string    `json:"status"`
}

// IsPending returns true if the title has not been scheduled yet.
func (t *BulkTitle) IsPending() bool {
	return t.Status == TitleStatusPending
}

// CountPending returns the number of titles still waiting for a slot.
func CountPending(titles []BulkTitle) int {
	n := 0
	for i := range titles {
		if titles[i].IsPending() {
			n++
		}
	}
	return n
}
