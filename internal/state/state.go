// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package state owns the in-memory application documents. A single
// goroutine applies every read and mutation, so the HTTP handlers and the
// background poller can never interleave a whole-file rewrite. Mutations
// declare which documents they touched and the owner persists exactly
// those before acknowledging.
package state

import (
	"context"
	"log/slog"
	"slices"

	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/store"
)

// Docs is a bitmask naming the documents a mutation touched.
type Docs uint8

// Document flags for Update closures.
const (
	DocPosts Docs = 1 << iota
	DocTitles
	DocConfig
	DocKeys
)

// Data holds the in-memory mirror of the persisted JSON documents.
// Closures passed to Update and View receive it directly and must not
// retain references past their return.
type Data struct {
	Posts  []model.ScheduledPost
	Titles []model.BulkTitle
	Config model.PostingConfig
	Keys   model.APIKeys
}

type op struct {
	fn    func(*Data) (Docs, error)
	reply chan error
}

// Manager funnels all access to the application documents through one
// owner goroutine.
type Manager struct {
	store  *store.Store
	logger *slog.Logger
	ops    chan op
	data   Data
}

// New loads the documents from the store and returns a Manager. Load
// failures are logged and replaced with defaults so a corrupt file cannot
// prevent startup; the damaged file is overwritten on the next mutation.
func New(st *store.Store, logger *slog.Logger) *Manager {
	m := &Manager{
		store:  st,
		logger: logger,
		ops:    make(chan op),
	}

	var err error
	if m.data.Posts, err = st.LoadPosts(); err != nil {
		logger.Error("loading scheduled posts, starting empty", "error", err)
		m.data.Posts = nil
	}
	if m.data.Titles, err = st.LoadTitles(); err != nil {
		logger.Error("loading bulk titles, starting empty", "error", err)
		m.data.Titles = nil
	}
	if m.data.Config, err = st.LoadPostingConfig(); err != nil {
		logger.Error("loading posting config, using defaults", "error", err)
	}
	if m.data.Keys, err = st.LoadAPIKeys(); err != nil {
		logger.Error("loading api keys, starting empty", "error", err)
	}

	return m
}

// Run owns the data until ctx is cancelled. It must be started exactly
// once, before any call to Update or View.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-m.ops:
			docs, err := o.fn(&m.data)
			if err == nil && docs != 0 {
				m.persist(docs)
			}
			o.reply <- err
		}
	}
}

// persist writes the named documents. Storage failures are logged and
// swallowed: the in-memory state keeps serving and the next successful
// write repairs the file.
func (m *Manager) persist(docs Docs) {
	if docs&DocPosts != 0 {
		if err := m.store.SavePosts(m.data.Posts); err != nil {
			m.logger.Error("persisting scheduled posts", "error", err)
		}
	}
	if docs&DocTitles != 0 {
		if err := m.store.SaveTitles(m.data.Titles); err != nil {
			m.logger.Error("persisting bulk titles", "error", err)
		}
	}
	if docs&DocConfig != 0 {
		if err := m.store.SavePostingConfig(m.data.Config); err != nil {
			m.logger.Error("persisting posting config", "error", err)
		}
	}
	if docs&DocKeys != 0 {
		if err := m.store.SaveAPIKeys(m.data.Keys); err != nil {
			m.logger.Error("persisting api keys", "error", err)
		}
	}
}

func (m *Manager) submit(ctx context.Context, fn func(*Data) (Docs, error)) error {
	o := op{fn: fn, reply: make(chan error, 1)}
	select {
	case m.ops <- o:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Update applies fn to the data on the owner goroutine. The returned Docs
// mask names the documents to persist; returning an error skips
// persistence and the data must be left unmodified.
func (m *Manager) Update(ctx context.Context, fn func(*Data) (Docs, error)) error {
	return m.submit(ctx, fn)
}

// View runs fn on the owner goroutine for a consistent read.
func (m *Manager) View(ctx context.Context, fn func(*Data)) error {
	return m.submit(ctx, func(d *Data) (Docs, error) {
		fn(d)
		return 0, nil
	})
}

// Snapshot returns a copy of the documents safe to use off the owner
// goroutine. Slice elements are values; callers treat keyword slices as
// immutable.
func (m *Manager) Snapshot(ctx context.Context) (Data, error) {
	var out Data
	err := m.View(ctx, func(d *Data) {
		out = Data{
			Posts:  slices.Clone(d.Posts),
			Titles: slices.Clone(d.Titles),
			Config: d.Config,
			Keys:   d.Keys,
		}
		out.Config.PostDays = slices.Clone(d.Config.PostDays)
	})
	return out, err
}

// Keys returns the current provider credentials. Collaborators call this
// per request so settings changes take effect without a restart.
func (m *Manager) Keys(ctx context.Context) model.APIKeys {
	var keys model.APIKeys
	if err := m.View(ctx, func(d *Data) { keys = d.Keys }); err != nil {
		return model.APIKeys{}
	}
	return keys
}
