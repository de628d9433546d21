package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

func testConfig(url string) config.ImagesConfig {
	return config.ImagesConfig{
		BaseURL:       url,
		Steps:         20,
		Width:         1280,
		Height:        720,
		GuidanceScale: 7.5,
		FastSteps:     8,
		FastWidth:     512,
		FastHeight:    512,
		TimeoutSec:    5,
	}
}

// TestGenerateDecodesImage checks request shape and base64 decoding.
func TestGenerateDecodesImage(t *testing.T) {
	imageData := bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 64)
	var gotReq txt2imgRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sdapi/v1/txt2img" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(txt2imgResponse{
			Images: []string{base64.StdEncoding.EncodeToString(imageData)},
		})
	}))
	defer srv.Close()

	data, err := New(testConfig(srv.URL), false).Generate(context.Background(), "a red barn at dusk")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.Equal(data, imageData) {
		t.Fatal("decoded image differs from served image")
	}
	if gotReq.Steps != 20 || gotReq.Width != 1280 || gotReq.Height != 720 || gotReq.CFGScale != 7.5 {
		t.Fatalf("request = %+v", gotReq)
	}
	if gotReq.Prompt != "a red barn at dusk" {
		t.Fatalf("prompt = %q", gotReq.Prompt)
	}
}

// TestGenerateFastModeLowersLoad checks the reduced-quality knobs.
func TestGenerateFastModeLowersLoad(t *testing.T) {
	var gotReq txt2imgRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(txt2imgResponse{
			Images: []string{base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 200))},
		})
	}))
	defer srv.Close()

	if _, err := New(testConfig(srv.URL), true).Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotReq.Steps != 8 || gotReq.Width != 512 || gotReq.Height != 512 {
		t.Fatalf("fast request = %+v", gotReq)
	}
}

// TestGenerateEmptyImages checks shape validation of the response.
func TestGenerateEmptyImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(txt2imgResponse{})
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), false).Generate(context.Background(), "p")
	var svcErr *types.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
}

// TestGenerateHTTPError checks non-200 mapping.
func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), false).Generate(context.Background(), "p")
	var svcErr *types.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}
}

// TestTruncatePrompt checks the CLIP window cap.
func TestTruncatePrompt(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := TruncatePrompt(long, 75)
	if n := len(strings.Fields(got)); n != 75 {
		t.Fatalf("truncated to %d words, want 75", n)
	}
	if TruncatePrompt("short prompt", 75) != "short prompt" {
		t.Fatal("short prompt should pass through unchanged")
	}
}

// TestOptimizerBuildsPromptPerScene checks ordering and duration carry.
func TestOptimizerBuildsPromptPerScene(t *testing.T) {
	gen := genFunc(func(ctx context.Context, prompt string) (string, error) {
		return "  optimized: " + prompt[:20] + "  ", nil
	})
	plan := &types.Plan{Topic: "volcanoes", Tone: "dramatic"}
	scenes := []types.Scene{
		{Index: 1, StartSec: 0, EndSec: 10, Narration: "a", Visual: "lava flow"},
		{Index: 2, StartSec: 10, EndSec: 25, Narration: "b", Visual: "ash cloud"},
	}

	set, err := NewOptimizer(gen).Run(context.Background(), plan, scenes)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(set.Scenes) != 2 {
		t.Fatalf("prompt count = %d, want 2", len(set.Scenes))
	}
	if set.Scenes[1].Index != 2 || set.Scenes[1].DurationSec != 15 {
		t.Fatalf("scene prompt = %+v", set.Scenes[1])
	}
	if strings.HasPrefix(set.Scenes[0].Prompt, " ") {
		t.Fatal("prompt should be trimmed")
	}
}

type genFunc func(ctx context.Context, prompt string) (string, error)

func (f genFunc) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }
