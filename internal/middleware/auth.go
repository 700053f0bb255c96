// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication, rate
// limiting, security headers and visit analytics.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// SessionKeyAuthenticated marks a session that passed the master key check.
const SessionKeyAuthenticated = "authenticated"

// RequireLogin creates middleware that requires an authenticated session.
// Unauthenticated requests are redirected to the login page.
func RequireLogin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sm.GetBool(r.Context(), SessionKeyAuthenticated) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireLoginAPI creates middleware that requires an authenticated session
// for API routes. Unauthenticated requests get a JSON 401 instead of a
// redirect.
func RequireLoginAPI(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sm.GetBool(r.Context(), SessionKeyAuthenticated) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "authentication required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IsAuthenticated reports whether the request carries a logged-in session.
func IsAuthenticated(sm *scs.SessionManager, r *http.Request) bool {
	return sm.GetBool(r.Context(), SessionKeyAuthenticated)
}

// GetClientIP extracts the client IP from the request. Reverse proxy
// headers win over the socket address.
func GetClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// X-Forwarded-For can contain multiple IPs; take the first one
	if ips := r.Header.Get("X-Forwarded-For"); ips != "" {
		first, _, _ := strings.Cut(ips, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
