// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/olegiv/autopost-go/internal/model"
)

// createTestImage creates a simple gradient image with the given size.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func keysWith(hf, openai string) func() model.APIKeys {
	return func() model.APIKeys {
		return model.APIKeys{HFAPIKey: hf, OpenAIAPIKey: openai}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Bitcoin Halving 2028")
	if !strings.Contains(prompt, "Bitcoin Halving 2028") {
		t.Errorf("prompt %q does not mention the title", prompt)
	}
	if !strings.Contains(prompt, "16:9") {
		t.Errorf("prompt %q lost the aspect ratio hint", prompt)
	}
}

func TestStoreSaveJPEG(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080/")

	result, err := store.SaveJPEG(encodePNG(t, createTestImage(400, 300)))
	if err != nil {
		t.Fatalf("SaveJPEG() error = %v", err)
	}

	if !strings.HasPrefix(result.URL, "http://localhost:8080/images/") {
		t.Errorf("URL = %q, want images path under base URL", result.URL)
	}
	if filepath.Ext(result.FilePath) != ".jpg" {
		t.Errorf("FilePath = %q, want .jpg", result.FilePath)
	}

	saved, err := imaging.Open(result.FilePath)
	if err != nil {
		t.Fatalf("reopen saved image: %v", err)
	}
	if got := saved.Bounds().Dx(); got != 400 {
		t.Errorf("width = %d, want unchanged 400", got)
	}
}

func TestStoreSaveJPEGResizesWide(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")

	result, err := store.SaveJPEG(encodePNG(t, createTestImage(2400, 600)))
	if err != nil {
		t.Fatalf("SaveJPEG() error = %v", err)
	}

	saved, err := imaging.Open(result.FilePath)
	if err != nil {
		t.Fatalf("reopen saved image: %v", err)
	}
	if got := saved.Bounds().Dx(); got != maxImageWidth {
		t.Errorf("width = %d, want %d", got, maxImageWidth)
	}
	if got := saved.Bounds().Dy(); got != 300 {
		t.Errorf("height = %d, want aspect-preserving 300", got)
	}
}

func TestStoreSaveJPEGRejectsGarbage(t *testing.T) {
	store := NewStore(t.TempDir(), "http://localhost:8080")
	if _, err := store.SaveJPEG([]byte("not an image")); err == nil {
		t.Fatal("SaveJPEG() accepted garbage input")
	}
}

func TestHuggingFaceGenerate(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		var buf bytes.Buffer
		_ = imaging.Encode(&buf, createTestImage(320, 180), imaging.JPEG)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	gen := NewHuggingFace(keysWith("hf-token", ""), NewStore(t.TempDir(), "http://localhost:8080"), testLogger())
	gen.endpoint = srv.URL

	result, err := gen.Generate(context.Background(), "Apa itu DeFi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotAuth != "Bearer hf-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if !strings.Contains(gotPayload["inputs"], "Apa itu DeFi") {
		t.Errorf("prompt %q does not mention title", gotPayload["inputs"])
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("stored image missing: %v", err)
	}
}

func TestHuggingFaceGenerateNoKey(t *testing.T) {
	gen := NewHuggingFace(keysWith("", ""), NewStore(t.TempDir(), ""), testLogger())
	if _, err := gen.Generate(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("Generate() error = %v, want missing key error", err)
	}
}

func TestHuggingFaceGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := NewHuggingFace(keysWith("hf-token", ""), NewStore(t.TempDir(), ""), testLogger())
	gen.endpoint = srv.URL

	_, err := gen.Generate(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("Generate() error = %v, want status 503 error", err)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		var buf bytes.Buffer
		_ = imaging.Encode(&buf, createTestImage(200, 100), imaging.PNG)
		resp := map[string]any{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(buf.Bytes())},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	gen := NewOpenAI(keysWith("", "sk-test"), NewStore(t.TempDir(), "http://localhost:8080"), testLogger())
	gen.baseURL = srv.URL

	result, err := gen.Generate(context.Background(), "Altcoin Season")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotPath != "/images/generations" {
		t.Errorf("path = %q, want /images/generations", gotPath)
	}
	if gotBody["model"] != dalleModel {
		t.Errorf("model = %v, want %q", gotBody["model"], dalleModel)
	}
	if gotBody["size"] != dalleSize {
		t.Errorf("size = %v, want %q", gotBody["size"], dalleSize)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("stored image missing: %v", err)
	}
}

func TestMockGenerate(t *testing.T) {
	gen := NewMock(NewStore(t.TempDir(), "http://localhost:8080"))

	result, err := gen.Generate(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("placeholder missing: %v", err)
	}
	if !strings.HasSuffix(result.URL, ".jpg") {
		t.Errorf("URL = %q, want .jpg suffix", result.URL)
	}
}
