// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP surface: the login and dashboard
// pages plus the JSON API the dashboard calls.
package handler

// Route patterns for chi router registration.
const (
	// RouteRoot is the dashboard page.
	RouteRoot = "/"
	// RouteLogin is the login page.
	RouteLogin = "/login"
	// RouteLogout ends the session.
	RouteLogout = "/logout"
	// RouteDebug is the operator debug snapshot.
	RouteDebug = "/debug"

	// RouteAPIBulkUpload ingests a titles file.
	RouteAPIBulkUpload = "/api/bulk-upload"
	// RouteAPIScheduleBulk assigns slots to pending titles.
	RouteAPIScheduleBulk = "/api/schedule-bulk"
	// RouteAPIBulkTitles lists the bulk titles.
	RouteAPIBulkTitles = "/api/bulk-titles"
	// RouteAPIPosts lists and creates scheduled posts.
	RouteAPIPosts = "/api/posts"
	// RouteAPISettingsKeys reads and updates provider credentials.
	RouteAPISettingsKeys = "/api/settings/keys"
	// RouteAPISettingsConfig reads and updates the posting configuration.
	RouteAPISettingsConfig = "/api/settings/config"
	// RouteAPISettingsTest reports provider configuration state.
	RouteAPISettingsTest = "/api/settings/test"
	// RouteAPIHealth is the unauthenticated health check.
	RouteAPIHealth = "/api/health"
	// RouteAPISchedulerTrigger runs one publish scan.
	RouteAPISchedulerTrigger = "/api/scheduler/trigger"
	// RouteAPISchedulerRestart bounces the poller.
	RouteAPISchedulerRestart = "/api/scheduler/restart"
	// RouteAPISchedulerStatus reports the poller state.
	RouteAPISchedulerStatus = "/api/scheduler/status"
	// RouteAPIStats returns performance aggregates.
	RouteAPIStats = "/api/stats"
	// RouteAPIEvents returns the activity log.
	RouteAPIEvents = "/api/events"
)

const (
	redirectRoot  = RouteRoot
	redirectLogin = RouteLogin
)
