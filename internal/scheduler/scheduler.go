// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler drives the minute poller that publishes due posts.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/publish"
	"github.com/olegiv/autopost-go/internal/schedule"
	"github.com/olegiv/autopost-go/internal/state"
)

// publishTimeout bounds one post's trip through the pipeline.
const publishTimeout = 5 * time.Minute

// Result summarizes one scan over the scheduled posts.
type Result struct {
	Due       int `json:"due"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// Status describes the poller for the dashboard.
type Status struct {
	Running bool       `json:"running"`
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Scheduler scans for due posts once a minute and pushes each through
// the publish pipeline. Scans are serialized: a manual trigger and a
// cron tick never overlap.
type Scheduler struct {
	state     *state.Manager
	pipeline  *publish.Pipeline
	tolerance time.Duration
	logger    *slog.Logger
	cron      *cron.Cron

	runMu sync.Mutex

	mu      sync.Mutex
	ctx     context.Context
	entryID cron.EntryID
	running bool
	lastRun time.Time
}

// New creates a scheduler. The tolerance widens the due check so posts
// missed during downtime still publish.
func New(st *state.Manager, pipeline *publish.Pipeline, tolerance time.Duration, logger *slog.Logger) *Scheduler {
	if tolerance <= 0 {
		tolerance = schedule.DefaultTolerance
	}
	return &Scheduler{
		state:     st,
		pipeline:  pipeline,
		tolerance: tolerance,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start begins the minute ticker and fires an immediate catch-up scan.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.ctx = ctx

	if s.entryID == 0 {
		id, err := s.cron.AddFunc("* * * * *", s.tick)
		if err != nil {
			return err
		}
		s.entryID = id
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("publish scheduler started", "tolerance", s.tolerance.String())

	go s.tick()
	return nil
}

// Stop halts the ticker and waits for a running cron scan to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("publish scheduler stopped")
}

// Restart bounces the poller so a new configuration takes effect.
func (s *Scheduler) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// Status reports the poller state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Running: s.running}
	if !s.lastRun.IsZero() {
		last := s.lastRun
		st.LastRun = &last
	}
	if s.running {
		for _, entry := range s.cron.Entries() {
			if entry.ID == s.entryID && !entry.Next.IsZero() {
				next := entry.Next
				st.NextRun = &next
			}
		}
	}
	return st
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	result, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("scheduled scan failed", "error", err)
		return
	}
	if result.Due > 0 {
		s.logger.Info("scheduled scan finished",
			"due", result.Due,
			"published", result.Published,
			"failed", result.Failed)
	}
}

// RunOnce performs one scan: snapshot the documents, publish every due
// post and write each outcome back. A scan with nothing due leaves the
// stored documents untouched.
func (s *Scheduler) RunOnce(ctx context.Context) (Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	var res Result

	snap, err := s.state.Snapshot(ctx)
	if err != nil {
		return res, err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()

	due := schedule.DueIndexes(snap.Posts, now, s.tolerance)
	res.Due = len(due)
	if len(due) == 0 {
		return res, nil
	}

	s.logger.Info("processing due posts", "count", len(due))

	for _, idx := range due {
		if ctx.Err() != nil {
			break
		}
		post := snap.Posts[idx]

		postCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		updated, pubErr := s.pipeline.Publish(postCtx, post, snap.Config, snap.Keys)
		cancel()

		if pubErr != nil {
			res.Failed++
			s.logger.Error("post failed to publish",
				"post_id", post.ID,
				"title", post.Title,
				"error", pubErr)
		} else {
			res.Published++
		}

		if err := s.writeBack(ctx, updated); err != nil {
			s.logger.Error("post state write-back failed",
				"post_id", updated.ID,
				"error", err)
		}
	}

	return res, nil
}

// writeBack replaces the post in the shared state by ID. A post removed
// while publishing is dropped silently.
func (s *Scheduler) writeBack(ctx context.Context, updated model.ScheduledPost) error {
	return s.state.Update(ctx, func(d *state.Data) (state.Docs, error) {
		for i := range d.Posts {
			if d.Posts[i].ID == updated.ID {
				d.Posts[i] = updated
				return state.DocPosts, nil
			}
		}
		return 0, nil
	})
}
