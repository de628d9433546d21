package script

import (
	"context"
	"errors"
	"testing"

	"shorts-pipeline/types"
)

// fakeGen returns canned text per call.
type fakeGen struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

// TestPlannerRunDecodesFencedJSON checks fence stripping plus validation.
func TestPlannerRunDecodesFencedJSON(t *testing.T) {
	gen := &fakeGen{response: "```json\n" + `{
  "topic": "black holes",
  "audience": "curious teens",
  "tone": "educational",
  "duration_sec": 60,
  "key_points": ["event horizon", "spaghettification"],
  "scene_count": 4,
  "hook": "You could fall forever.",
  "call_to_action": "Subscribe for more."
}` + "\n```"}

	plan, err := NewPlanner(gen).Run(context.Background(), "black holes")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if plan.Topic != "black holes" || plan.SceneCount != 4 {
		t.Fatalf("plan = %+v", plan)
	}
}

// TestPlannerRejectsNonJSON checks shape validation of the response.
func TestPlannerRejectsNonJSON(t *testing.T) {
	gen := &fakeGen{response: "Sure! Here is a plan for your video..."}
	_, err := NewPlanner(gen).Run(context.Background(), "t")
	var vErr *types.ValidationError
	if !errors.As(err, &vErr) || vErr.Reason != types.ReasonBadResponseShape {
		t.Fatalf("error = %v, want bad_response_shape ValidationError", err)
	}
}

// TestPlannerRejectsMissingFields checks required plan fields.
func TestPlannerRejectsMissingFields(t *testing.T) {
	gen := &fakeGen{response: `{"topic": "x"}`}
	_, err := NewPlanner(gen).Run(context.Background(), "t")
	var vErr *types.ValidationError
	if !errors.As(err, &vErr) || vErr.Reason != types.ReasonBadResponseShape {
		t.Fatalf("error = %v, want bad_response_shape ValidationError", err)
	}
}

// TestValidatePlanFillsDefaults checks scene count and duration defaults.
func TestValidatePlanFillsDefaults(t *testing.T) {
	plan := &types.Plan{Topic: "t", Audience: "a", Tone: "fun", KeyPoints: []string{"k"}}
	if err := ValidatePlan(plan); err != nil {
		t.Fatalf("ValidatePlan() error = %v", err)
	}
	if plan.SceneCount != 5 || plan.DurationSec != 60 {
		t.Fatalf("defaults not applied: %+v", plan)
	}
}

// TestWriterValidatesGeneratedScript checks a bad document fails the stage.
func TestWriterValidatesGeneratedScript(t *testing.T) {
	gen := &fakeGen{response: "## SCENE 1 (0-10s)\n**Narration:** only one scene\n"}
	plan := &types.Plan{Topic: "t", Audience: "a", Tone: "fun", KeyPoints: []string{"k"}, SceneCount: 3, DurationSec: 60}
	_, _, err := NewWriter(gen).Run(context.Background(), plan)
	var vErr *types.ValidationError
	if !errors.As(err, &vErr) || vErr.Reason != types.ReasonSceneCountOutOfRange {
		t.Fatalf("error = %v, want scene_count_out_of_range", err)
	}
}
