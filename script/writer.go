package script

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shorts-pipeline/types"
)

const scriptPrompt = `You are a scriptwriter for short educational social videos.

Video plan:
Topic: %s
Audience: %s
Tone: %s
Duration: %d seconds
Key points: %s
Number of scenes: %d

Write a script in Markdown with exactly %d scenes. Each scene has a
narration (max 30 words), a one-line visual description, and a declared
time range in seconds. Use exactly this format for every scene:

## SCENE 1 (0-10s)
**Narration:** Your narration here

**Visual:** Concise visual description

---

## SCENE 2 (10-25s)
...

Be direct. Keep the requested tone. Maximize visual impact.`

// Writer turns a plan into a validated scene document.
type Writer struct {
	gen TextGenerator
}

// NewWriter creates a Writer backed by the given generator.
func NewWriter(gen TextGenerator) *Writer {
	return &Writer{gen: gen}
}

// Run generates the scene document and validates it by parsing before
// the stage may be marked done. The raw Markdown is returned so the
// caller persists exactly what was validated.
func (w *Writer) Run(ctx context.Context, plan *types.Plan) (string, []types.Scene, error) {
	log.Println("[script] Generating scene document...")

	prompt := fmt.Sprintf(scriptPrompt,
		plan.Topic,
		plan.Audience,
		plan.Tone,
		plan.DurationSec,
		strings.Join(plan.KeyPoints, ", "),
		plan.SceneCount,
		plan.SceneCount,
	)

	document, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	scenes, err := Parse(document)
	if err != nil {
		return "", nil, err
	}

	log.Printf("[script] ✓ Script ready: %d scenes", len(scenes))
	return document, scenes, nil
}
