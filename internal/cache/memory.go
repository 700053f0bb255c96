// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is a thread-safe in-memory cache with TTL support.
type Memory struct {
	data       sync.Map
	defaultTTL time.Duration
	stopCh     chan struct{}
	stopped    atomic.Bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an in-memory cache. Expired entries are removed lazily
// on Get and swept once a minute in the background.
func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	m := &Memory{
		defaultTTL: defaultTTL,
		stopCh:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			m.data.Range(func(key, val any) bool {
				if now.After(val.(*memoryEntry).expiresAt) {
					m.data.Delete(key)
				}
				return true
			})
		}
	}
}

// Get retrieves a value, honoring expiry.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.stopped.Load() {
		return nil, ErrClosed
	}
	val, ok := m.data.Load(key)
	if !ok {
		return nil, ErrMiss
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.data.Delete(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores a value with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.stopped.Load() {
		return ErrClosed
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.data.Store(key, &memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if m.stopped.Load() {
		return ErrClosed
	}
	m.data.Delete(key)
	return nil
}

// Close stops the background sweeper.
func (m *Memory) Close() error {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopCh)
	}
	return nil
}
