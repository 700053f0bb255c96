// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Mock writes a small solid placeholder so the publish flow can be
// exercised without any image API.
type Mock struct {
	store *Store
}

// NewMock creates a placeholder image generator.
func NewMock(store *Store) *Mock { return &Mock{store: store} }

// Generate stores a fixed placeholder image.
func (g *Mock) Generate(_ context.Context, _ string) (*Result, error) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	fill := color.RGBA{R: 30, G: 80, B: 160, A: 255}
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return g.store.SaveJPEG(buf.Bytes())
}
