package upload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

func TestMetadataFromPlan(t *testing.T) {
	plan := &types.Plan{
		Topic:        "how tides work",
		Hook:         "The ocean breathes twice a day.",
		CallToAction: "Follow for more.",
		KeyPoints:    []string{"moon", "sun"},
	}
	cfg := config.UploadConfig{Tags: []string{"shorts", "science"}}

	meta := MetadataFromPlan(plan, cfg)

	if meta.Title != "The ocean breathes twice a day." {
		t.Errorf("title = %q", meta.Title)
	}
	for _, want := range []string{"• moon", "• sun", "Follow for more.", "#shorts"} {
		if !strings.Contains(meta.Description, want) {
			t.Errorf("description missing %q:\n%s", want, meta.Description)
		}
	}
	if len(meta.Tags) != 3 || meta.Tags[2] != "how tides work" {
		t.Errorf("tags = %v", meta.Tags)
	}
}

func TestMetadataFromPlanFallsBackToTopic(t *testing.T) {
	long := strings.Repeat("x", maxTitleLen+1)
	meta := MetadataFromPlan(&types.Plan{Topic: "short topic", Hook: long}, config.UploadConfig{})
	if meta.Title != "short topic" {
		t.Errorf("title = %q, want topic fallback", meta.Title)
	}

	meta = MetadataFromPlan(&types.Plan{Topic: "short topic"}, config.UploadConfig{})
	if meta.Title != "short topic" {
		t.Errorf("title = %q, want topic when hook empty", meta.Title)
	}
}

func TestWriteReceipt(t *testing.T) {
	dir := t.TempDir()
	if err := WriteReceipt(dir, "abc123", "https://www.youtube.com/watch?v=abc123", "t"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ReceiptName))
	if err != nil {
		t.Fatal(err)
	}
	var rec Receipt
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.VideoID != "abc123" || rec.UploadedAt == "" {
		t.Errorf("receipt = %+v", rec)
	}
}
