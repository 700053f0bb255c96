// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"path/filepath"
	"testing"
)

func TestNewWithoutDatabase(t *testing.T) {
	g, err := New("")
	if err != nil {
		t.Fatalf("New with empty path should not error: %v", err)
	}
	if g.IsEnabled() {
		t.Error("lookup should be disabled without a database")
	}
}

func TestNewMissingDatabaseFile(t *testing.T) {
	g, err := New(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("expected error for a missing database file")
	}
	if g.IsEnabled() {
		t.Error("lookup should be disabled when the database is missing")
	}

	// Lookups still work, returning empty codes
	if code := g.Country("8.8.8.8"); code != "" {
		t.Errorf("Country = %q, want empty without a database", code)
	}
}

func TestCountryPrivateRanges(t *testing.T) {
	g, _ := New("")

	// Public addresses yield "" because no database is loaded; invalid
	// addresses always yield "".
	tests := []struct {
		ip       string
		expected string
	}{
		{"10.1.2.3", "LOCAL"},
		{"172.16.0.1", "LOCAL"},
		{"192.168.1.100", "LOCAL"},
		{"127.0.0.1", "LOCAL"},
		{"fe80::1", "LOCAL"},
		{"::1", "LOCAL"},
		{"8.8.8.8", ""},
		{"not-an-ip", ""},
		{"", ""},
		{"999.1.1.1", ""},
	}

	for _, tt := range tests {
		if got := g.Country(tt.ip); got != tt.expected {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.expected)
		}
	}
}

func TestReloadWithoutPath(t *testing.T) {
	g, _ := New("")
	if err := g.Reload(); err != nil {
		t.Errorf("Reload without a path should be a no-op, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	g, _ := New("")
	if err := g.Close(); err != nil {
		t.Errorf("Close on a disabled lookup should not error: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("second Close should not error: %v", err)
	}
}
