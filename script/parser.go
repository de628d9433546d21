// Package script owns the scene document: generating it from a plan
// and parsing it back into validated scenes.
//
// The document format is plain Markdown, one block per scene:
//
//	## SCENE 1 (0-10s)
//	**Narration:** words to be spoken
//
//	**Visual:** one-line visual description
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"shorts-pipeline/types"
)

// MinScenes and MaxScenes bound the accepted scene count.
const (
	MinScenes = 3
	MaxScenes = 8
)

var sceneHeaderRe = regexp.MustCompile(`^##\s+SCENE\s+(\d+)\s+\((\d+)\s*-\s*(\d+)s\)`)

// Parse reads a scene document into an ordered scene sequence.
// Parsing is deterministic: the same document always yields the same
// scenes. Declared timings are read as authored, not reconciled.
func Parse(document string) ([]types.Scene, error) {
	var scenes []types.Scene
	var current *types.Scene

	for _, line := range strings.Split(document, "\n") {
		if m := sceneHeaderRe.FindStringSubmatch(line); m != nil {
			index, _ := strconv.Atoi(m[1])
			start, _ := strconv.ParseFloat(m[2], 64)
			end, _ := strconv.ParseFloat(m[3], 64)

			scenes = append(scenes, types.Scene{Index: index, StartSec: start, EndSec: end})
			current = &scenes[len(scenes)-1]
			continue
		}
		if current == nil {
			continue
		}
		if text, ok := strings.CutPrefix(line, "**Narration:**"); ok {
			current.Narration = strings.TrimSpace(text)
		} else if text, ok := strings.CutPrefix(line, "**Visual:**"); ok {
			current.Visual = strings.TrimSpace(text)
		}
	}

	if err := validate(scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

func validate(scenes []types.Scene) error {
	if len(scenes) < MinScenes || len(scenes) > MaxScenes {
		return &types.ValidationError{
			Reason: types.ReasonSceneCountOutOfRange,
			Detail: fmt.Sprintf("got %d scenes, want %d-%d", len(scenes), MinScenes, MaxScenes),
		}
	}
	for i, s := range scenes {
		if s.Index != i+1 {
			return &types.ValidationError{
				Reason: types.ReasonSceneIndexNotContiguous,
				Detail: fmt.Sprintf("scene at position %d is numbered %d", i+1, s.Index),
			}
		}
		if s.Narration == "" {
			return &types.ValidationError{
				Reason: types.ReasonMissingNarration,
				Detail: fmt.Sprintf("scene %d", s.Index),
			}
		}
	}
	return nil
}

// NarrationText joins every scene's narration into the single text fed
// to speech synthesis.
func NarrationText(scenes []types.Scene) string {
	parts := make([]string, 0, len(scenes))
	for _, s := range scenes {
		parts = append(parts, s.Narration)
	}
	return strings.Join(parts, " ")
}
