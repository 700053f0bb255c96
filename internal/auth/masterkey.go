// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth hashes and verifies the shared master key that gates the
// single-user login.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/olegiv/autopost-go/internal/store"
)

// HashKey returns the hex-encoded SHA-256 digest of a master key. This is
// the exact text stored in master_key.hash.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// VerifyKey checks a candidate key against a stored hex digest.
// Uses constant-time comparison to prevent timing attacks.
func VerifyKey(key, storedHash string) bool {
	digest := HashKey(key)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}

// Gate decides master key logins. There is exactly one key for the whole
// installation; the first key presented while none is stored becomes the
// permanent key.
type Gate struct {
	store *store.Store
	mu    sync.Mutex
}

// NewGate creates a login gate backed by the hash file in the data directory.
func NewGate(st *store.Store) *Gate {
	return &Gate{store: st}
}

// Login reports whether key grants access. An empty key never does. When no
// hash is stored yet, the key is enrolled and the login succeeds.
func (g *Gate) Login(key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	stored, err := g.store.MasterKeyHash()
	if err != nil {
		return false, fmt.Errorf("loading master key: %w", err)
	}
	if stored == "" {
		if err := g.store.SaveMasterKeyHash(HashKey(key)); err != nil {
			return false, fmt.Errorf("storing master key: %w", err)
		}
		return true, nil
	}
	return VerifyKey(key, stored), nil
}

// Enrolled reports whether a master key has been set.
func (g *Gate) Enrolled() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stored, err := g.store.MasterKeyHash()
	if err != nil {
		return false, fmt.Errorf("loading master key: %w", err)
	}
	return stored != "", nil
}
