// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ingest turns uploaded CSV and plain-text files into ordered
// title lists. Input errors never surface as Go errors: undecodable or
// unusable input yields an empty result and callers check for emptiness.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Entry is one parsed title with its optional keywords.
type Entry struct {
	Title    string
	Keywords []string
}

// Header substrings selecting the title column. Later matches win.
var titleHeaders = []string{"title", "judul", "post", "article"}

// SupportedFile reports whether the upload filename has a parseable
// extension.
func SupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

// Parse dispatches on the file extension. Unsupported extensions yield nil.
func Parse(name string, data []byte) []Entry {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return CSV(data)
	case ".txt":
		return Text(data)
	}
	return nil
}

// fallbackCharmaps are tried after UTF-8, in order: Latin-1/ISO-8859-1
// first, then CP1252. Single-byte charmaps accept any input, so decoding
// never fails outright; the chain exists for fidelity of interpretation,
// not error recovery.
var fallbackCharmaps = []encoding.Encoding{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// decode converts raw upload bytes to a string via the encoding fallback
// chain. ok is false only if every decoder rejected the input.
func decode(data []byte) (string, bool) {
	// The stock UTF-8 decoder silently replaces invalid bytes, so validity
	// is checked directly; a leading BOM is stripped to keep it out of the
	// first header cell.
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), true
	}

	for _, enc := range fallbackCharmaps {
		out, err := enc.NewDecoder().Bytes(data)
		if err == nil {
			return string(out), true
		}
	}
	return "", false
}

// detectDelimiter counts candidate delimiters in the first line and picks
// the most frequent, preferring earlier candidates on ties. A line with no
// candidates defaults to comma.
func detectDelimiter(firstLine string) rune {
	candidates := []rune{',', ';', '\t', '|'}
	best := candidates[0]
	bestCount := strings.Count(firstLine, string(best))
	for _, c := range candidates[1:] {
		if n := strings.Count(firstLine, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// CSV parses a delimited file. The first row is a header: any column whose
// lowercase name contains "title", "judul", "post" or "article" becomes the
// title column (last match wins) and any containing "keyword" the keyword
// column. Rows without a usable title are skipped silently.
func CSV(data []byte) []Entry {
	text, ok := decode(data)
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}

	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(firstLine)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil
	}

	titleCol, keywordCol := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, t := range titleHeaders {
			if strings.Contains(name, t) {
				titleCol = i
			}
		}
		if strings.Contains(name, "keyword") {
			keywordCol = i
		}
	}
	if titleCol < 0 {
		return nil
	}

	var entries []Entry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, keep reading.
			continue
		}
		if len(row) <= titleCol {
			continue
		}
		title := strings.TrimSpace(row[titleCol])
		if title == "" {
			continue
		}

		var keywords []string
		if keywordCol >= 0 && len(row) > keywordCol {
			keywords = SplitKeywords(row[keywordCol])
		}
		entries = append(entries, Entry{Title: title, Keywords: keywords})
	}
	return entries
}

// Text parses a plain-text file: one title per non-blank line, lines
// starting with # are comments.
func Text(data []byte) []Entry {
	text, ok := decode(data)
	if !ok {
		return nil
	}

	var entries []Entry
	for _, line := range strings.Split(text, "\n") {
		title := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if title == "" || strings.HasPrefix(title, "#") {
			continue
		}
		entries = append(entries, Entry{Title: title})
	}
	return entries
}

// SplitKeywords splits a comma-separated keyword cell into trimmed,
// non-empty values.
func SplitKeywords(cell string) []string {
	var out []string
	for _, k := range strings.Split(cell, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
