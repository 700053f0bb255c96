// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/autopost-go/internal/geoip"
	"github.com/olegiv/autopost-go/internal/track"
)

const visitWriteTimeout = 5 * time.Second

// visitWriter wraps http.ResponseWriter to capture the status code.
type visitWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (vw *visitWriter) WriteHeader(code int) {
	if !vw.wroteHeader {
		vw.status = code
		vw.wroteHeader = true
	}
	vw.ResponseWriter.WriteHeader(code)
}

func (vw *visitWriter) Write(b []byte) (int, error) {
	if !vw.wroteHeader {
		vw.status = http.StatusOK
		vw.wroteHeader = true
	}
	return vw.ResponseWriter.Write(b)
}

// Visits returns middleware that records successful dashboard page views.
// Recording happens off the request path; a slow database never delays the
// response. The geo lookup may be nil.
func Visits(tracker *track.Tracker, lookup *geoip.Lookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shouldRecordVisit(r) {
				next.ServeHTTP(w, r)
				return
			}

			vw := &visitWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(vw, r)

			if vw.status != http.StatusOK {
				return
			}

			go recordVisit(tracker, lookup, logger, r.URL.Path, r.UserAgent(), GetClientIP(r))
		})
	}
}

// shouldRecordVisit filters out everything that is not a page view.
func shouldRecordVisit(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}

	path := r.URL.Path

	skipPrefixes := []string{
		"/api/",
		"/images/",
		"/static/",
		"/favicon",
		"/robots.txt",
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	return true
}

// recordVisit parses the user agent and stores one visit row.
func recordVisit(tracker *track.Tracker, lookup *geoip.Lookup, logger *slog.Logger, path, uaString, ip string) {
	ua := useragent.Parse(uaString)
	if ua.Bot {
		return
	}

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	}

	country := ""
	if lookup != nil {
		country = lookup.Country(ip)
	}

	ctx, cancel := context.WithTimeout(context.Background(), visitWriteTimeout)
	defer cancel()

	err := tracker.RecordVisit(ctx, track.Visit{
		Path:    path,
		Browser: browser,
		OS:      os,
		Device:  device,
		Country: country,
		IP:      ip,
	})
	if err != nil {
		logger.Error("failed to record visit", "error", err, "path", path)
	}
}
