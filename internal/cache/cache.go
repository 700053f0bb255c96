// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a small byte-value cache with in-memory and Redis
// backends, selected by configuration. It fronts repeatable computations
// such as keyword research and the stats aggregates.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a thread-safe byte-value cache. Values are []byte so the same
// interface serves both the in-memory and the Redis backend.
type Cache interface {
	// Get returns the value for key, or ErrMiss when absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrMiss indicates the key was not found or has expired.
	ErrMiss Error = "cache miss"

	// ErrClosed indicates the cache has been closed.
	ErrClosed Error = "cache closed"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New creates a cache for the named backend. The Redis backend verifies
// connectivity before returning.
func New(backend, redisURL string, defaultTTL time.Duration) (Cache, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(defaultTTL), nil
	case BackendRedis:
		return NewRedis(redisURL, "autopost:", defaultTTL)
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}
