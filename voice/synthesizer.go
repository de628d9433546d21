// Package voice drives the speech-synthesis executable (piper) and
// measures the resulting audio, which is the ground truth for caption
// timing downstream.
package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/extproc"
	"shorts-pipeline/types"
)

// Synthesizer turns narration text into one audio file.
type Synthesizer struct {
	cfg    config.VoiceConfig
	runner extproc.Runner
}

// New creates a Synthesizer using the given process runner.
func New(cfg config.VoiceConfig, runner extproc.Runner) *Synthesizer {
	return &Synthesizer{cfg: cfg, runner: runner}
}

// Run synthesizes narrationText into outFile and returns the track
// with its measured duration.
func (s *Synthesizer) Run(ctx context.Context, narrationText, outFile string) (types.AudioTrack, error) {
	log.Println("[narration] Synthesizing narration...")

	tmp, err := os.CreateTemp("", "narration-*.txt")
	if err != nil {
		return types.AudioTrack{}, &types.IOError{Op: "create", Path: "narration temp file", Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(narrationText); err != nil {
		tmp.Close()
		return types.AudioTrack{}, &types.IOError{Op: "write", Path: tmp.Name(), Err: err}
	}
	tmp.Close()

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSec)*time.Second)
	defer cancel()

	_, err = s.runner.Run(runCtx, s.cfg.PiperCommand,
		"--model", expandHome(s.cfg.ModelPath),
		"--input_file", tmp.Name(),
		"--output_file", outFile,
		"--speaker", strconv.Itoa(s.cfg.Speaker),
	)
	if err != nil {
		return types.AudioTrack{}, &types.ServiceError{Service: "piper", Err: err}
	}

	info, err := os.Stat(outFile)
	if err != nil || info.Size() == 0 {
		return types.AudioTrack{}, &types.IOError{Op: "stat", Path: outFile, Err: fmt.Errorf("synthesis produced no audio")}
	}

	duration, err := s.Duration(ctx, outFile)
	if err != nil {
		return types.AudioTrack{}, err
	}

	log.Printf("[narration] ✓ Audio ready: %.1fs", duration)
	return types.AudioTrack{Path: outFile, DurationSec: duration}, nil
}

// Duration measures an audio file via ffprobe.
func (s *Synthesizer) Duration(ctx context.Context, audioFile string) (float64, error) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.runner.Run(runCtx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioFile,
	)
	if err != nil {
		return 0, &types.ServiceError{Service: "ffprobe", Err: err}
	}

	duration, err := ParseDuration(res.Stdout)
	if err != nil {
		return 0, &types.ServiceError{Service: "ffprobe", Err: err}
	}
	return duration, nil
}

// ParseDuration reads ffprobe's single-value duration output.
func ParseDuration(output string) (float64, error) {
	trimmed := strings.TrimSpace(output)
	duration, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected duration output %q", trimmed)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("nonpositive duration %v", duration)
	}
	return duration, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
