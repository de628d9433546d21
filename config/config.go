package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Images    ImagesConfig    `yaml:"images"`
	Voice     VoiceConfig     `yaml:"voice"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Compose   ComposeConfig   `yaml:"compose"`
	Research  ResearchConfig  `yaml:"research"`
	Upload    UploadConfig    `yaml:"upload"`
	Paths     PathsConfig     `yaml:"paths"`
}

type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

type ImagesConfig struct {
	BaseURL       string  `yaml:"base_url"`
	Steps         int     `yaml:"steps"`
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	GuidanceScale float64 `yaml:"guidance_scale"`
	FastSteps     int     `yaml:"fast_steps"`
	FastWidth     int     `yaml:"fast_width"`
	FastHeight    int     `yaml:"fast_height"`
	TimeoutSec    int     `yaml:"timeout_sec"`
}

type VoiceConfig struct {
	PiperCommand string `yaml:"piper_command"`
	ModelPath    string `yaml:"model_path"`
	Speaker      int    `yaml:"speaker"`
	TimeoutSec   int    `yaml:"timeout_sec"`
}

type SubtitlesConfig struct {
	MaxCharsPerLine int     `yaml:"max_chars_per_line"`
	MinCueSec       float64 `yaml:"min_cue_sec"`
}

type ComposeConfig struct {
	FPS        int    `yaml:"fps"`
	Quality    string `yaml:"quality"` // fast | balanced | high
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type ResearchConfig struct {
	Subreddit string `yaml:"subreddit"`
	Limit     int    `yaml:"limit"`
}

type UploadConfig struct {
	Visibility        string   `yaml:"visibility"`
	CategoryID        string   `yaml:"category_id"`
	Tags              []string `yaml:"tags"`
	NotifySubscribers bool     `yaml:"notify_subscribers"`
	MadeForKids       bool     `yaml:"made_for_kids"`
	DefaultLanguage   string   `yaml:"default_language"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
}

// Default returns the baseline configuration used when no config file
// is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "mistral",
			Temperature: 0.7,
			TimeoutSec:  300,
		},
		Images: ImagesConfig{
			BaseURL:       "http://localhost:7860",
			Steps:         20,
			Width:         1280,
			Height:        720,
			GuidanceScale: 7.5,
			FastSteps:     8,
			FastWidth:     512,
			FastHeight:    512,
			TimeoutSec:    600,
		},
		Voice: VoiceConfig{
			PiperCommand: "piper",
			ModelPath:    "~/.local/share/piper/en_US-lessac-medium.onnx",
			Speaker:      0,
			TimeoutSec:   300,
		},
		Subtitles: SubtitlesConfig{
			MaxCharsPerLine: 42,
			MinCueSec:       1.2,
		},
		Compose: ComposeConfig{
			FPS:        30,
			Quality:    "high",
			Width:      1280,
			Height:     720,
			TimeoutSec: 3600,
		},
		Research: ResearchConfig{
			Subreddit: "todayilearned",
			Limit:     15,
		},
		Upload: UploadConfig{
			Visibility:      "private",
			CategoryID:      "27",
			DefaultLanguage: "en",
		},
		Paths: PathsConfig{
			Output: "output",
		},
	}
}

// CRF maps the quality preset to an x264 constant rate factor.
func (c ComposeConfig) CRF() int {
	switch c.Quality {
	case "fast":
		return 23
	case "balanced":
		return 20
	default:
		return 18
	}
}

// Load reads a YAML config file over the defaults. A missing file is
// not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
