package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"shorts-pipeline/types"
)

// TextGenerator is the slice of the text-generation service the
// planning and scripting stages need.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const planPrompt = `You are an expert at planning short-form YouTube videos.

Topic: %s

Structure a plan for a 60 second video. Respond with this JSON shape:

{
  "topic": "string - the video topic",
  "audience": "string - target audience description",
  "tone": "string - voice tone (educational, fun, inspiring, etc)",
  "duration_sec": 60,
  "key_points": ["point 1", "point 2", "point 3", "point 4"],
  "scene_count": 5,
  "hook": "string - striking first sentence (max 15 words)",
  "call_to_action": "string - closing sentence with a CTA"
}

Be direct. Return ONLY valid JSON, no explanations.`

// Planner turns a topic into a content plan.
type Planner struct {
	gen TextGenerator
}

// NewPlanner creates a Planner backed by the given generator.
func NewPlanner(gen TextGenerator) *Planner {
	return &Planner{gen: gen}
}

// Run generates and shape-checks the plan for one topic.
func (p *Planner) Run(ctx context.Context, topic string) (*types.Plan, error) {
	log.Printf("[plan] Generating content plan for %q...", topic)

	raw, err := p.gen.Generate(ctx, fmt.Sprintf(planPrompt, topic))
	if err != nil {
		return nil, err
	}

	var plan types.Plan
	if err := json.Unmarshal([]byte(StripFences(raw)), &plan); err != nil {
		return nil, &types.ValidationError{
			Reason: types.ReasonBadResponseShape,
			Detail: fmt.Sprintf("plan is not valid JSON: %v", err),
		}
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}

	log.Printf("[plan] ✓ Plan ready: %d key points, %d scenes", len(plan.KeyPoints), plan.SceneCount)
	return &plan, nil
}

// ValidatePlan checks the fields every downstream stage relies on.
func ValidatePlan(plan *types.Plan) error {
	var missing []string
	if plan.Topic == "" {
		missing = append(missing, "topic")
	}
	if plan.Audience == "" {
		missing = append(missing, "audience")
	}
	if plan.Tone == "" {
		missing = append(missing, "tone")
	}
	if len(plan.KeyPoints) == 0 {
		missing = append(missing, "key_points")
	}
	if len(missing) > 0 {
		return &types.ValidationError{
			Reason: types.ReasonBadResponseShape,
			Detail: "plan missing fields: " + strings.Join(missing, ", "),
		}
	}
	if plan.SceneCount == 0 {
		plan.SceneCount = 5
	}
	if plan.DurationSec == 0 {
		plan.DurationSec = 60
	}
	return nil
}

// StripFences removes a Markdown code fence the model may wrap JSON in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
