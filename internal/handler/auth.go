// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/autopost-go/internal/auth"
	"github.com/olegiv/autopost-go/internal/events"
	"github.com/olegiv/autopost-go/internal/middleware"
	"github.com/olegiv/autopost-go/internal/model"
	"github.com/olegiv/autopost-go/internal/render"
)

// AuthHandler handles the master key login and logout.
type AuthHandler struct {
	gate            *auth.Gate
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	events          *events.Service
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate *auth.Gate, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection, es *events.Service) *AuthHandler {
	return &AuthHandler{
		gate:            gate,
		renderer:        renderer,
		sessionManager:  sm,
		events:          es,
		loginProtection: lp,
	}
}

// LoginData holds data for the login template.
type LoginData struct {
	// Enrolled is false until the first master key has been stored; the
	// page explains that the next key presented becomes permanent.
	Enrolled bool
}

// LoginForm renders the login page. Authenticated sessions are sent
// straight to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAuthenticated(h.sessionManager, r) {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}

	enrolled, err := h.gate.Enrolled()
	if err != nil {
		slog.Error("master key state unavailable", "error", err)
	}

	if err := h.renderer.Render(w, r, "login", render.TemplateData{
		Title: "Sign In",
		Data:  LoginData{Enrolled: enrolled},
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

// Login handles the login form submission. There is a single shared master
// key; the first key ever presented is enrolled as that key.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid form data")
		return
	}

	masterKey := r.FormValue("master_key")
	if masterKey == "" {
		flashError(w, r, h.renderer, redirectLogin, "Master key is required")
		return
	}

	clientIP := middleware.GetClientIP(r)

	ok, err := h.gate.Login(masterKey)
	if err != nil {
		slog.Error("master key verification failed", "error", err)
		flashError(w, r, h.renderer, redirectLogin, "Login is temporarily unavailable")
		return
	}

	if !ok {
		slog.Debug("invalid master key attempt", "ip", clientIP)
		_ = h.events.LogWarning(r.Context(), model.EventCategoryAuth, "Login failed: invalid master key", clientIP, nil)

		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(clientIP); locked {
				_ = h.events.LogWarning(r.Context(), model.EventCategoryAuth, "Client locked out after failed logins", clientIP,
					map[string]any{"duration": lockDuration.String()})
				flashError(w, r, h.renderer, redirectLogin,
					"Too many failed attempts. Try again in "+formatDuration(lockDuration)+".")
				return
			}
			remaining := h.loginProtection.GetRemainingAttempts(clientIP)
			if remaining > 0 && remaining <= 3 {
				flashError(w, r, h.renderer, redirectLogin,
					fmt.Sprintf("Invalid master key. %d attempts remaining.", remaining))
				return
			}
		}
		flashError(w, r, h.renderer, redirectLogin, "Invalid master key")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(clientIP)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyAuthenticated, true)

	slog.Info("operator signed in", "ip", clientIP)
	_ = h.events.LogInfo(r.Context(), model.EventCategoryAuth, "Operator signed in", clientIP, nil)

	flashSuccess(w, r, h.renderer, redirectRoot, "Welcome back")
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.GetClientIP(r)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("operator signed out", "ip", clientIP)
	_ = h.events.LogInfo(r.Context(), model.EventCategoryAuth, "Operator signed out", clientIP, nil)

	flashAndRedirect(w, r, h.renderer, redirectLogin, "Signed out", "info")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
