// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
)

// loginAndGet performs a login request to establish a session cookie, then
// requests path with that cookie through the same handler.
func loginAndGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	loginReq := httptest.NewRequest(http.MethodPost, "/session-login", nil)
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, loginReq)

	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login did not set a session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// testAuthStack builds a mux with a session-establishing login route and
// a protected route wrapped by the middleware under test.
func testAuthStack(sm *scs.SessionManager, protect func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/session-login", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), SessionKeyAuthenticated, true)
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/private", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})))
	return sm.LoadAndSave(mux)
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	sm := scs.New()
	handler := testAuthStack(sm, RequireLogin(sm))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestRequireLoginAllowsAuthenticated(t *testing.T) {
	sm := scs.New()
	handler := testAuthStack(sm, RequireLogin(sm))

	rec := loginAndGet(t, handler, "/private")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestRequireLoginAPIReturnsJSON401(t *testing.T) {
	sm := scs.New()
	handler := testAuthStack(sm, RequireLoginAPI(sm))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"success":false`) {
		t.Errorf("body should carry the JSON error shape, got %q", body)
	}
}

func TestRequireLoginAPIAllowsAuthenticated(t *testing.T) {
	sm := scs.New()
	handler := testAuthStack(sm, RequireLoginAPI(sm))

	rec := loginAndGet(t, handler, "/private")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		expected   string
	}{
		{
			name:       "X-Real-IP wins",
			realIP:     "203.0.113.7",
			forwarded:  "198.51.100.1",
			remoteAddr: "192.0.2.1:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "first X-Forwarded-For entry",
			forwarded:  "198.51.100.1, 10.0.0.1, 10.0.0.2",
			remoteAddr: "192.0.2.1:1234",
			expected:   "198.51.100.1",
		},
		{
			name:       "remote address with port stripped",
			remoteAddr: "192.0.2.1:1234",
			expected:   "192.0.2.1",
		},
		{
			name:       "remote address without port",
			remoteAddr: "192.0.2.1",
			expected:   "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := GetClientIP(req); got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}
