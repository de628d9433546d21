package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts-pipeline/types"
)

// Logical artifact names, relative to the run directory.
const (
	ArtifactPlan       = "plan.json"
	ArtifactScript     = "script.md"
	ArtifactAudio      = "audio/narration.wav"
	ArtifactTimestamps = "timestamps.json"
	ArtifactPrompts    = "image_prompts.json"
	ArtifactSRT        = "subtitles.srt"
	ArtifactVTT        = "subtitles.vtt"
	ArtifactVideo      = "video_final.mp4"
	ArtifactSummary    = "pipeline_results.json"
	ArtifactLog        = "pipeline.log"
)

const imagesDir = "images"

// Store maps logical artifact names onto one run's directory. It is a
// naming convention over the filesystem: no locking, no transactions.
// A single run is driven by a single control flow.
type Store struct {
	dir string
}

// NewStore scopes a Store to one run directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the run directory.
func (s *Store) Dir() string { return s.dir }

// EnsureLayout creates the run directory tree.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.dir, filepath.Join(s.dir, imagesDir), filepath.Join(s.dir, "audio")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &types.IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	return nil
}

// Path resolves a logical artifact name to its absolute location.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// Exists reports whether the named artifact is present and non-empty.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Size() > 0
}

// ImageName returns the zero-padded artifact name for one scene image.
func ImageName(index int) string {
	return fmt.Sprintf("%s/scene_%03d.png", imagesDir, index)
}

// ImageCount counts the scene images present in the run.
func (s *Store) ImageCount() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, imagesDir, "scene_*.png"))
	if err != nil {
		return 0
	}
	return len(matches)
}

// ImagePattern returns the ffmpeg-style printf pattern for the image
// sequence.
func (s *Store) ImagePattern() string {
	return filepath.Join(s.dir, imagesDir, "scene_%03d.png")
}

// ReadText loads a textual artifact.
func (s *Store) ReadText(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", &types.IOError{Op: "read", Path: s.Path(name), Err: err}
	}
	return string(data), nil
}

// WriteText persists a textual artifact.
func (s *Store) WriteText(name, content string) error {
	return s.WriteBytes(name, []byte(content))
}

// WriteBytes persists a binary artifact, creating parent directories
// as needed.
func (s *Store) WriteBytes(name string, data []byte) error {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &types.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ReadJSON decodes a JSON artifact into v.
func (s *Store) ReadJSON(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return &types.IOError{Op: "read", Path: s.Path(name), Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &types.ValidationError{
			Reason: types.ReasonBadResponseShape,
			Detail: fmt.Sprintf("%s: %v", name, err),
		}
	}
	return nil
}

// WriteJSON persists v as an indented JSON artifact.
func (s *Store) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return s.WriteBytes(name, append(data, '\n'))
}

// Slug makes a topic safe for a directory name: first 20 characters,
// spaces replaced with underscores.
func Slug(topic string) string {
	topic = strings.TrimSpace(topic)
	runes := []rune(topic)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	slug := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '/', '\\':
			return '_'
		default:
			return r
		}
	}, string(runes))
	return slug
}

// RunDir builds the default run directory for a topic.
func RunDir(root, topic string, now time.Time) string {
	return filepath.Join(root, now.Format("20060102_150405")+"_"+Slug(topic))
}
