// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the dashboard templates and static assets so the
// binary ships self-contained.
package web

import "embed"

// Templates holds the HTML templates under templates/ (layouts, partials
// and pages).
//
//go:embed all:templates
var Templates embed.FS

// Static holds the built CSS and JS served under /static/dist/.
//
//go:embed all:static/dist
var Static embed.FS
