package main

import (
	"testing"

	"shorts-pipeline/pipeline"
	"shorts-pipeline/types"
)

func TestRunUsageErrors(t *testing.T) {
	if got := run(nil); got != exitUsage {
		t.Errorf("no args: exit %d, want %d", got, exitUsage)
	}
	if got := run([]string{"-no-such-flag"}); got != exitUsage {
		t.Errorf("bad flag: exit %d, want %d", got, exitUsage)
	}
	if got := run([]string{"-upload", t.TempDir()}); got != exitUsage {
		t.Errorf("upload without video: exit %d, want %d", got, exitUsage)
	}
}

func TestResumeTopic(t *testing.T) {
	store := pipeline.NewStore(t.TempDir())
	if err := store.EnsureLayout(); err != nil {
		t.Fatal(err)
	}
	if got := resumeTopic(store); got != "" {
		t.Errorf("empty store: %q", got)
	}

	if err := store.WriteJSON(pipeline.ArtifactPlan, types.Plan{Topic: "bees"}); err != nil {
		t.Fatal(err)
	}
	if got := resumeTopic(store); got != "bees" {
		t.Errorf("resumeTopic = %q, want bees", got)
	}
}
