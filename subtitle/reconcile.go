// Package subtitle reconciles script-declared scene timing against the
// measured narration duration and renders the resulting caption cues.
package subtitle

import (
	"fmt"

	"shorts-pipeline/types"
)

// Cue is one caption: a text line and its display time range.
type Cue struct {
	Index    int
	StartSec float64
	EndSec   float64
	Text     string
}

// Options configures reconciliation. Zero values pick the defaults.
type Options struct {
	MaxLineChars int     // default 42
	MinCueSec    float64 // default 1.2
}

func (o Options) withDefaults() Options {
	if o.MaxLineChars <= 0 {
		o.MaxLineChars = 42
	}
	if o.MinCueSec <= 0 {
		o.MinCueSec = 1.2
	}
	return o
}

const timeEpsilon = 1e-6

// sceneSpan tracks one scene's slice of the global line list and its
// scaled time budget.
type sceneSpan struct {
	start  int
	count  int
	budget float64
}

// Reconcile derives caption cues whose total span equals actualDuration
// exactly while preserving the relative pacing the script declared.
//
// Declared per-scene durations are scaled by actualDuration/declared
// and laid out back-to-back from zero; within a scene, each wrapped
// line gets time proportional to its character count, subject to the
// minimum display floor. When the floor cannot be met from scene-level
// slack it is rebalanced track-wide; when it cannot be met at all the
// track is divided equally among all lines and a non-fatal
// ConsistencyError warning is returned instead of a failure.
func Reconcile(scenes []types.Scene, actualDuration float64, opts Options) ([]Cue, *types.ConsistencyError, error) {
	opts = opts.withDefaults()

	if actualDuration <= 0 {
		return nil, nil, &types.ValidationError{
			Reason: types.ReasonBadAudioDuration,
			Detail: fmt.Sprintf("audio duration %v", actualDuration),
		}
	}

	var declared float64
	for _, s := range scenes {
		if d := s.DeclaredDuration(); d > 0 {
			declared += d
		}
	}
	if declared <= 0 {
		return nil, nil, &types.ValidationError{Reason: types.ReasonZeroDeclaredDuration}
	}
	scale := actualDuration / declared

	var texts []string
	var durations []float64
	var spans []sceneSpan

	for _, scene := range scenes {
		lines := WrapText(scene.Narration, opts.MaxLineChars)
		if len(lines) == 0 {
			continue
		}
		budget := scene.DeclaredDuration()
		if budget < 0 {
			budget = 0
		}
		budget *= scale

		totalChars := 0
		for _, line := range lines {
			totalChars += len(line)
		}

		spans = append(spans, sceneSpan{start: len(texts), count: len(lines), budget: budget})
		for _, line := range lines {
			texts = append(texts, line)
			durations = append(durations, budget*float64(len(line))/float64(totalChars))
		}
	}
	if len(texts) == 0 {
		return nil, nil, &types.ValidationError{Reason: types.ReasonMissingNarration, Detail: "no caption lines"}
	}

	var warning *types.ConsistencyError

	switch {
	case opts.MinCueSec*float64(len(texts)) > actualDuration+timeEpsilon:
		// Audio too short for the number of required lines: divide the
		// track equally and warn.
		equal := actualDuration / float64(len(texts))
		for i := range durations {
			durations[i] = equal
		}
		warning = &types.ConsistencyError{
			Detail: fmt.Sprintf("%d lines cannot each hold %.2fs in %.2fs of audio; divided equally",
				len(texts), opts.MinCueSec, actualDuration),
		}

	case sceneFloorsFeasible(spans, opts.MinCueSec):
		// Enough slack inside every scene: rebalance per scene, keeping
		// scene boundaries where scaling put them.
		for _, span := range spans {
			applyFloor(durations[span.start:span.start+span.count], span.budget, opts.MinCueSec)
		}

	default:
		// Some scene is too tight on its own, but the track has room:
		// rebalance across the whole track, moving scene boundaries.
		applyFloor(durations, actualDuration, opts.MinCueSec)
	}

	cues := make([]Cue, len(texts))
	elapsed := 0.0
	for i := range texts {
		cues[i] = Cue{Index: i + 1, StartSec: elapsed, Text: texts[i]}
		elapsed += durations[i]
		cues[i].EndSec = elapsed
	}
	// Pin the final boundary so float accumulation cannot leave a gap.
	cues[len(cues)-1].EndSec = actualDuration

	return cues, warning, nil
}

func sceneFloorsFeasible(spans []sceneSpan, floor float64) bool {
	for _, span := range spans {
		if floor*float64(span.count) > span.budget+timeEpsilon {
			return false
		}
	}
	return true
}

// applyFloor raises every duration below floor up to it and rescales
// the rest so the total still equals budget exactly. Raising one cue
// can push another below the floor, so pinning repeats until stable;
// each pass pins at least one cue, so the loop terminates. The caller
// guarantees floor*len(durations) <= budget.
func applyFloor(durations []float64, budget, floor float64) {
	pinned := make([]bool, len(durations))
	for {
		freeSum := 0.0
		pinnedCount := 0
		for i, d := range durations {
			if pinned[i] {
				pinnedCount++
			} else {
				freeSum += d
			}
		}
		remaining := budget - floor*float64(pinnedCount)

		if freeSum <= 0 {
			// Everything pinned (or degenerate zero-length lines):
			// spread the budget equally.
			equal := budget / float64(len(durations))
			for i := range durations {
				durations[i] = equal
			}
			return
		}

		rescale := remaining / freeSum
		pinnedMore := false
		for i := range durations {
			if !pinned[i] && durations[i]*rescale < floor {
				pinned[i] = true
				pinnedMore = true
			}
		}
		if !pinnedMore {
			for i := range durations {
				if pinned[i] {
					durations[i] = floor
				} else {
					durations[i] *= rescale
				}
			}
			return
		}
	}
}
