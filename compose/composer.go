// Package compose assembles the final video with ffmpeg: the image
// sequence paced to cover the narration, the audio track, and burned
// subtitles when available.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/extproc"
	"shorts-pipeline/types"
)

// Job describes one mux invocation.
type Job struct {
	ImagePattern  string // e.g. images/scene_%03d.png
	ImageCount    int
	AudioFile     string
	AudioDuration float64
	SubtitleFile  string // optional; empty skips the subtitles filter
	OutFile       string
}

// Composer runs the media-muxing executable.
type Composer struct {
	cfg    config.ComposeConfig
	runner extproc.Runner
}

// New creates a Composer using the given process runner.
func New(cfg config.ComposeConfig, runner extproc.Runner) *Composer {
	return &Composer{cfg: cfg, runner: runner}
}

// Run muxes the job into the final video. Success is the process
// exiting zero and the output file existing.
func (c *Composer) Run(ctx context.Context, job Job) error {
	log.Printf("[compose] Muxing %d images + %.1fs audio (fps=%d, crf=%d)...",
		job.ImageCount, job.AudioDuration, c.cfg.FPS, c.cfg.CRF())

	if job.ImageCount == 0 {
		return &types.IOError{Op: "read", Path: job.ImagePattern, Err: fmt.Errorf("no images to compose")}
	}
	if job.AudioDuration <= 0 {
		return &types.ValidationError{
			Reason: types.ReasonBadAudioDuration,
			Detail: fmt.Sprintf("audio duration %v", job.AudioDuration),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSec)*time.Second)
	defer cancel()

	if _, err := c.runner.Run(runCtx, "ffmpeg", c.buildArgs(job)...); err != nil {
		return &types.ServiceError{Service: "ffmpeg", Err: err}
	}

	info, err := os.Stat(job.OutFile)
	if err != nil || info.Size() == 0 {
		return &types.IOError{Op: "stat", Path: job.OutFile, Err: fmt.Errorf("mux produced no output")}
	}

	log.Printf("[compose] ✓ Video ready: %s (%.1f MB)", job.OutFile, float64(info.Size())/1024/1024)
	return nil
}

// buildArgs lays the images out at a rate that spreads them evenly
// over the audio and trims the output to the exact audio duration.
func (c *Composer) buildArgs(job Job) []string {
	imageRate := float64(job.ImageCount) / job.AudioDuration

	args := []string{
		"-y",
		"-stream_loop", "-1",
		"-r", fmt.Sprintf("%.6f", imageRate),
		"-i", job.ImagePattern,
		"-i", job.AudioFile,
	}

	filters := []string{fmt.Sprintf("scale=%d:%d:flags=lanczos", c.cfg.Width, c.cfg.Height)}
	if job.SubtitleFile != "" {
		filters = append(filters, "subtitles="+escapeFilterPath(job.SubtitleFile))
	}
	args = append(args, "-vf", strings.Join(filters, ","))

	args = append(args,
		"-r", fmt.Sprintf("%d", c.cfg.FPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", fmt.Sprintf("%d", c.cfg.CRF()),
		"-c:a", "aac",
		"-b:a", "128k",
		"-pix_fmt", "yuv420p",
		"-t", fmt.Sprintf("%.3f", job.AudioDuration),
		"-movflags", "+faststart",
		job.OutFile,
	)
	return args
}

// escapeFilterPath escapes the characters the ffmpeg filter parser
// treats specially.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}
