package types

// Plan is the content plan produced by the planning stage.
type Plan struct {
	Topic        string   `json:"topic"`
	Audience     string   `json:"audience"`
	Tone         string   `json:"tone"`
	DurationSec  int      `json:"duration_sec"`
	KeyPoints    []string `json:"key_points"`
	SceneCount   int      `json:"scene_count"`
	Hook         string   `json:"hook"`
	CallToAction string   `json:"call_to_action"`
}

// Scene is one narrative unit of the script: a declared time window,
// the words to be spoken, and a visual description for image generation.
// Declared timings are authored by the script stage and treated as
// intent; real timing comes from the synthesized narration.
type Scene struct {
	Index     int     `json:"index"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Narration string  `json:"narration"`
	Visual    string  `json:"visual"`
}

// DeclaredDuration returns the scene's declared length in seconds.
func (s Scene) DeclaredDuration() float64 {
	return s.EndSec - s.StartSec
}

// ScenePrompt is one optimized image-generation prompt for a scene.
type ScenePrompt struct {
	Index       int     `json:"index"`
	Visual      string  `json:"visual"`
	Prompt      string  `json:"prompt"`
	DurationSec float64 `json:"duration_sec"`
}

// PromptSet is the full set of image prompts for one run.
type PromptSet struct {
	Topic  string        `json:"topic"`
	Scenes []ScenePrompt `json:"scenes"`
}

// AudioTrack is the synthesized narration file with its measured
// duration. The duration is ground truth for caption timing.
type AudioTrack struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec"`
}

// Timestamps is the narration timing artifact written by the narration
// stage and consumed by the subtitle stage.
type Timestamps struct {
	NarrationFile    string  `json:"narration_file"`
	TotalDurationSec float64 `json:"total_duration_sec"`
	Scenes           []Scene `json:"scenes"`
}
