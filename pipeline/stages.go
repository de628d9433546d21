package pipeline

import (
	"context"
	"fmt"

	"shorts-pipeline/compose"
	"shorts-pipeline/config"
	"shorts-pipeline/extproc"
	"shorts-pipeline/images"
	"shorts-pipeline/script"
	"shorts-pipeline/subtitle"
	"shorts-pipeline/types"
	"shorts-pipeline/voice"
)

// TextGenerator produces text completions for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator produces image bytes for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Deps are the external services the stages talk to. Tests substitute
// fakes; main wires the real clients.
type Deps struct {
	LLM    TextGenerator
	Images ImageGenerator
	Runner extproc.Runner
	Warnf  func(format string, args ...any)
}

// BuildStages assembles the stage graph for one topic over one store.
func BuildStages(cfg *config.Config, store *Store, deps Deps, topic string) []Stage {
	warnf := deps.Warnf
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	return []Stage{
		{
			Name: StagePlan,
			Done: func() bool {
				var plan types.Plan
				if err := store.ReadJSON(ArtifactPlan, &plan); err != nil {
					return false
				}
				return script.ValidatePlan(&plan) == nil
			},
			Run: func(ctx context.Context) error {
				plan, err := script.NewPlanner(deps.LLM).Run(ctx, topic)
				if err != nil {
					return err
				}
				return store.WriteJSON(ArtifactPlan, plan)
			},
		},
		{
			Name: StageScript,
			Deps: []string{StagePlan},
			Done: func() bool {
				doc, err := store.ReadText(ArtifactScript)
				if err != nil {
					return false
				}
				_, err = script.Parse(doc)
				return err == nil
			},
			Run: func(ctx context.Context) error {
				var plan types.Plan
				if err := store.ReadJSON(ArtifactPlan, &plan); err != nil {
					return err
				}
				doc, _, err := script.NewWriter(deps.LLM).Run(ctx, &plan)
				if err != nil {
					return err
				}
				return store.WriteText(ArtifactScript, doc)
			},
		},
		{
			Name: StageNarration,
			Deps: []string{StageScript},
			Done: func() bool {
				if !store.Exists(ArtifactAudio) {
					return false
				}
				var ts types.Timestamps
				if err := store.ReadJSON(ArtifactTimestamps, &ts); err != nil {
					return false
				}
				return ts.TotalDurationSec > 0
			},
			Run: func(ctx context.Context) error {
				scenes, err := loadScenes(store)
				if err != nil {
					return err
				}
				synth := voice.New(cfg.Voice, deps.Runner)
				track, err := synth.Run(ctx, script.NarrationText(scenes), store.Path(ArtifactAudio))
				if err != nil {
					return err
				}
				return store.WriteJSON(ArtifactTimestamps, types.Timestamps{
					NarrationFile:    ArtifactAudio,
					TotalDurationSec: track.DurationSec,
					Scenes:           scenes,
				})
			},
		},
		{
			Name: StagePrompts,
			Deps: []string{StageScript},
			Done: func() bool {
				var set types.PromptSet
				if err := store.ReadJSON(ArtifactPrompts, &set); err != nil {
					return false
				}
				return len(set.Scenes) > 0
			},
			Run: func(ctx context.Context) error {
				var plan types.Plan
				if err := store.ReadJSON(ArtifactPlan, &plan); err != nil {
					return err
				}
				scenes, err := loadScenes(store)
				if err != nil {
					return err
				}
				set, err := images.NewOptimizer(deps.LLM).Run(ctx, &plan, scenes)
				if err != nil {
					return err
				}
				return store.WriteJSON(ArtifactPrompts, set)
			},
		},
		{
			Name: StageImages,
			Deps: []string{StagePrompts},
			Done: func() bool {
				var set types.PromptSet
				if err := store.ReadJSON(ArtifactPrompts, &set); err != nil {
					return false
				}
				return len(set.Scenes) > 0 && store.ImageCount() >= len(set.Scenes)
			},
			Run: func(ctx context.Context) error {
				var set types.PromptSet
				if err := store.ReadJSON(ArtifactPrompts, &set); err != nil {
					return err
				}
				for _, sp := range set.Scenes {
					data, err := deps.Images.Generate(ctx, sp.Prompt)
					if err != nil {
						return fmt.Errorf("scene %d: %w", sp.Index, err)
					}
					if err := store.WriteBytes(ImageName(sp.Index), data); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name: StageSubtitles,
			Deps: []string{StageScript, StageNarration},
			Done: func() bool {
				return store.Exists(ArtifactSRT) && store.Exists(ArtifactVTT)
			},
			Run: func(ctx context.Context) error {
				var ts types.Timestamps
				if err := store.ReadJSON(ArtifactTimestamps, &ts); err != nil {
					return err
				}
				cues, warn, err := subtitle.Reconcile(ts.Scenes, ts.TotalDurationSec, subtitle.Options{
					MaxLineChars: cfg.Subtitles.MaxCharsPerLine,
					MinCueSec:    cfg.Subtitles.MinCueSec,
				})
				if err != nil {
					return err
				}
				if warn != nil {
					warnf("subtitles: %v", warn)
				}
				for _, out := range []struct {
					name   string
					format subtitle.Format
				}{
					{ArtifactSRT, subtitle.FormatSRT},
					{ArtifactVTT, subtitle.FormatVTT},
				} {
					rendered, err := subtitle.Render(cues, out.format)
					if err != nil {
						return err
					}
					if err := store.WriteText(out.name, rendered); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name: StageCompose,
			Deps: []string{StageNarration, StageImages, StageSubtitles},
			Done: func() bool {
				return store.Exists(ArtifactVideo)
			},
			Run: func(ctx context.Context) error {
				var ts types.Timestamps
				if err := store.ReadJSON(ArtifactTimestamps, &ts); err != nil {
					return err
				}
				subFile := ""
				if store.Exists(ArtifactSRT) {
					subFile = store.Path(ArtifactSRT)
				}
				return compose.New(cfg.Compose, deps.Runner).Run(ctx, compose.Job{
					ImagePattern:  store.ImagePattern(),
					ImageCount:    store.ImageCount(),
					AudioFile:     store.Path(ArtifactAudio),
					AudioDuration: ts.TotalDurationSec,
					SubtitleFile:  subFile,
					OutFile:       store.Path(ArtifactVideo),
				})
			},
		},
	}
}

// loadScenes re-parses the persisted script. Parsing is cheap and
// keeps script.md the single source of scene truth between stages.
func loadScenes(store *Store) ([]types.Scene, error) {
	doc, err := store.ReadText(ArtifactScript)
	if err != nil {
		return nil, err
	}
	return script.Parse(doc)
}
