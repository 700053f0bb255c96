// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists the application documents. The four JSON files and
// the master key hash live in the data directory and are rewritten wholesale
// on every mutation; the operational SQLite database holds sessions, events
// and tracking tables.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegiv/autopost-go/internal/model"
)

// Persisted file names inside the data directory.
const (
	scheduledPostsFile = "scheduled_posts.json"
	bulkTitlesFile     = "bulk_titles.json"
	postingConfigFile  = "posting_config.json"
	apiKeysFile        = "api_keys.json"
	masterKeyFile      = "master_key.hash"
)

// Store reads and writes the JSON documents in a single data directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// LoadPosts reads the scheduled posts document. A missing file yields an
// empty list and no error.
func (s *Store) LoadPosts() ([]model.ScheduledPost, error) {
	var posts []model.ScheduledPost
	if _, err := readJSON(s.path(scheduledPostsFile), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SavePosts writes the scheduled posts document atomically.
func (s *Store) SavePosts(posts []model.ScheduledPost) error {
	if posts == nil {
		posts = []model.ScheduledPost{}
	}
	return writeJSON(s.path(scheduledPostsFile), posts)
}

// LoadTitles reads the bulk titles document.
func (s *Store) LoadTitles() ([]model.BulkTitle, error) {
	var titles []model.BulkTitle
	if _, err := readJSON(s.path(bulkTitlesFile), &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// SaveTitles writes the bulk titles document atomically.
func (s *Store) SaveTitles(titles []model.BulkTitle) error {
	if titles == nil {
		titles = []model.BulkTitle{}
	}
	return writeJSON(s.path(bulkTitlesFile), titles)
}

// LoadPostingConfig reads the posting configuration, falling back to the
// defaults when the file is absent.
func (s *Store) LoadPostingConfig() (model.PostingConfig, error) {
	cfg := model.DefaultPostingConfig()
	if _, err := readJSON(s.path(postingConfigFile), &cfg); err != nil {
		return model.DefaultPostingConfig(), err
	}
	return cfg, nil
}

// SavePostingConfig writes the posting configuration atomically.
func (s *Store) SavePostingConfig(cfg model.PostingConfig) error {
	return writeJSON(s.path(postingConfigFile), cfg)
}

// LoadAPIKeys reads the provider credentials. The derived flag is
// recomputed on load so a hand-edited file cannot leave it stale.
func (s *Store) LoadAPIKeys() (model.APIKeys, error) {
	var keys model.APIKeys
	if _, err := readJSON(s.path(apiKeysFile), &keys); err != nil {
		return model.APIKeys{}, err
	}
	keys.Recompute()
	return keys, nil
}

// SaveAPIKeys writes the provider credentials atomically.
func (s *Store) SaveAPIKeys(keys model.APIKeys) error {
	return writeJSON(s.path(apiKeysFile), keys)
}

// MasterKeyHash returns the stored login key hash, or "" when no key has
// been set yet. The file holds the raw hex digest with no JSON wrapper.
func (s *Store) MasterKeyHash() (string, error) {
	data, err := os.ReadFile(s.path(masterKeyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading master key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveMasterKeyHash persists the login key hash.
func (s *Store) SaveMasterKeyHash(hash string) error {
	tmp, err := os.CreateTemp(s.dir, masterKeyFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.WriteString(hash + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing master key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(masterKeyFile)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing master key: %w", err)
	}
	return nil
}
