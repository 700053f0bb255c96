package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func applySecurityHeaders(cfg SecurityHeadersConfig, path string) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header()
}

func TestSecurityHeadersDefaultCSP(t *testing.T) {
	headers := applySecurityHeaders(DefaultSecurityHeadersConfig(true), "/")

	csp := headers.Get("Content-Security-Policy")
	if csp == "" {
		t.Fatal("expected Content-Security-Policy header")
	}

	wantDirectives := []string{
		"default-src 'self'",
		"form-action 'self'",
		"object-src 'none'",
		"img-src 'self' data: https:",
	}
	for _, d := range wantDirectives {
		if !strings.Contains(csp, d) {
			t.Errorf("CSP missing %q, got: %s", d, csp)
		}
	}

	// The dashboard loads nothing from third-party hosts.
	if strings.Contains(csp, "googletagmanager") || strings.Contains(csp, "cdn.") {
		t.Errorf("CSP should not allow external hosts, got: %s", csp)
	}
}

func TestSecurityHeadersHSTS(t *testing.T) {
	tests := []struct {
		name  string
		isDev bool
		want  string
	}{
		{
			name:  "development disables HSTS",
			isDev: true,
			want:  "",
		},
		{
			name:  "production enables HSTS with subdomains",
			isDev: false,
			want:  "max-age=31536000; includeSubDomains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := applySecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev), "/")
			if got := headers.Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersAlwaysPresent(t *testing.T) {
	headers := applySecurityHeaders(DefaultSecurityHeadersConfig(true), "/login")

	checks := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-XSS-Protection":       "1; mode=block",
		"X-Frame-Options":        "SAMEORIGIN",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, want := range checks {
		if got := headers.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	pp := headers.Get("Permissions-Policy")
	if !strings.Contains(pp, "camera=()") || !strings.Contains(pp, "geolocation=()") {
		t.Errorf("Permissions-Policy should lock down device features, got: %s", pp)
	}
}

func TestSecurityHeadersExcludePaths(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(true)
	cfg.ExcludePaths = []string{"/api/health"}

	tests := []struct {
		path    string
		wantCSP bool
	}{
		{path: "/api/health", wantCSP: false},
		{path: "/api/posts", wantCSP: true},
		{path: "/", wantCSP: true},
	}

	for _, tt := range tests {
		headers := applySecurityHeaders(cfg, tt.path)
		got := headers.Get("Content-Security-Policy") != ""
		if got != tt.wantCSP {
			t.Errorf("path %s: CSP present = %v, want %v", tt.path, got, tt.wantCSP)
		}
	}
}

func TestBuildCSPOrdering(t *testing.T) {
	csp := buildCSP(map[string]string{
		"script-src":  "'self'",
		"default-src": "'self'",
	})

	// default-src always leads regardless of map iteration order.
	if !strings.HasPrefix(csp, "default-src 'self'") {
		t.Errorf("CSP should start with default-src, got: %s", csp)
	}
	if !strings.Contains(csp, "; script-src 'self'") {
		t.Errorf("directives should be semicolon separated, got: %s", csp)
	}
}

func TestBuildPermissionsPolicy(t *testing.T) {
	pp := buildPermissionsPolicy(map[string]string{"camera": "()"})
	if pp != "camera=()" {
		t.Errorf("buildPermissionsPolicy = %q, want %q", pp, "camera=()")
	}
}
