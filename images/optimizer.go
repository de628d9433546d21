package images

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shorts-pipeline/types"
)

// TextGenerator is the slice of the text-generation service the prompt
// stage needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const optimizerPrompt = `You are an expert at Stable Diffusion prompts.

Based on this visual description: "%s"

Context: %s

Generate an optimized prompt for a 4K image following these rules:
- Specific, detailed visual style
- Quality and lighting keywords (cinematic, professional)
- 16:9 framing suitable for video
- Avoid vague terms, use concrete keywords
- Describe positively, never negate (no "no", "not", "without")

Return ONLY the optimized prompt, no explanation, no quotes.`

// Optimizer rewrites each scene's visual description into an image
// prompt via the text-generation service.
type Optimizer struct {
	gen TextGenerator
}

// NewOptimizer creates an Optimizer backed by the given generator.
func NewOptimizer(gen TextGenerator) *Optimizer {
	return &Optimizer{gen: gen}
}

// Run produces one optimized prompt per scene, in scene order.
func (o *Optimizer) Run(ctx context.Context, plan *types.Plan, scenes []types.Scene) (*types.PromptSet, error) {
	log.Printf("[prompts] Optimizing %d scene prompts...", len(scenes))

	planContext := fmt.Sprintf("Topic: %s, Tone: %s", plan.Topic, plan.Tone)
	set := &types.PromptSet{Topic: plan.Topic}

	for _, scene := range scenes {
		prompt := fmt.Sprintf(optimizerPrompt, scene.Visual, planContext)
		optimized, err := o.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", scene.Index, err)
		}

		set.Scenes = append(set.Scenes, types.ScenePrompt{
			Index:       scene.Index,
			Visual:      scene.Visual,
			Prompt:      strings.TrimSpace(optimized),
			DurationSec: scene.DeclaredDuration(),
		})
		log.Printf("[prompts] Scene %d/%d done", scene.Index, len(scenes))
	}

	return set, nil
}
