// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging generates and stores hero images for scheduled posts.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ErrNoAPIKey is returned when a provider is asked to generate without
// its key configured.
var ErrNoAPIKey = errors.New("api key not configured")

const (
	maxImageWidth = 1200
	jpegQuality   = 85
)

// Result points at a stored hero image.
type Result struct {
	URL      string `json:"url"`
	FilePath string `json:"file_path"`
}

// Generator produces one hero image for an article title.
type Generator interface {
	Generate(ctx context.Context, title string) (*Result, error)
}

// BuildPrompt turns an article title into an image generation prompt.
func BuildPrompt(title string) string {
	return fmt.Sprintf("Professional digital art illustration about %s, cryptocurrency blockchain technology, futuristic style, blue orange color scheme, landscape 16:9", title)
}

// Store persists generated images under dir/images and serves them at
// baseURL/images.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates an image store rooted at dataDir.
func NewStore(dataDir, baseURL string) *Store {
	return &Store{
		dir:     filepath.Join(dataDir, "images"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SaveJPEG decodes raw image bytes in any supported format, scales the
// picture down to the publishing width and stores it as JPEG under a
// fresh name.
func (s *Store) SaveJPEG(data []byte) (*Result, error) {
	if !supportedFormat(data) {
		return nil, fmt.Errorf("unsupported image format from provider")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode generated image: %w", err)
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode hero image: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	name := uuid.New().String() + ".jpg"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write hero image: %w", err)
	}

	return &Result{
		URL:      s.baseURL + "/images/" + name,
		FilePath: path,
	}, nil
}

// supportedFormat sniffs the response bytes before decoding. TIFF is
// rejected explicitly (CVE-2023-36308 in disintegration/imaging).
func supportedFormat(data []byte) bool {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return false
	}
	for _, format := range []string{"jpeg", "png", "gif", "webp"} {
		if strings.Contains(contentType, format) {
			return true
		}
	}
	return false
}
