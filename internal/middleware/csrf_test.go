package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func csrfOKHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFFetchMetadata(t *testing.T) {
	authKey := []byte("0123456789abcdef0123456789abcdef")
	handler := CSRF(DefaultCSRFConfig(authKey, false))(csrfOKHandler())

	tests := []struct {
		name         string
		method       string
		secFetchSite string
		wantStatus   int
	}{
		{
			name:         "same-origin POST passes",
			method:       http.MethodPost,
			secFetchSite: "same-origin",
			wantStatus:   http.StatusOK,
		},
		{
			name:         "cross-site POST rejected",
			method:       http.MethodPost,
			secFetchSite: "cross-site",
			wantStatus:   http.StatusForbidden,
		},
		{
			name:         "cross-site GET passes",
			method:       http.MethodGet,
			secFetchSite: "cross-site",
			wantStatus:   http.StatusOK,
		},
		{
			name:       "non-browser POST without fetch metadata passes",
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/posts", nil)
			if tt.secFetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.secFetchSite)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestDefaultCSRFConfigOrigins(t *testing.T) {
	authKey := []byte("0123456789abcdef0123456789abcdef")

	dev := DefaultCSRFConfig(authKey, true)
	if len(dev.TrustedOrigins) != 2 {
		t.Fatalf("dev TrustedOrigins = %d, want 2", len(dev.TrustedOrigins))
	}
	for _, origin := range dev.TrustedOrigins {
		// The library wants host:port values; a scheme breaks matching.
		if strings.HasPrefix(origin, "http") {
			t.Errorf("trusted origin %q must not include a scheme", origin)
		}
		if !strings.Contains(origin, ":") {
			t.Errorf("trusted origin %q must include a port", origin)
		}
	}

	prod := DefaultCSRFConfig(authKey, false)
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("production should trust no extra origins, got %v", prod.TrustedOrigins)
	}
}

func TestCSRFCustomErrorHandler(t *testing.T) {
	authKey := []byte("0123456789abcdef0123456789abcdef")
	cfg := DefaultCSRFConfig(authKey, false)

	called := false
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		http.Error(w, "rejected", http.StatusForbidden)
	})

	handler := CSRF(cfg)(csrfOKHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("custom error handler was not invoked")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
