// Package images is the image-generation service adapter plus the
// prompt-optimization stage that feeds it.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

const serviceName = "image-gen"

// maxPromptWords keeps prompts under the CLIP token window.
const maxPromptWords = 75

// Client talks to a Stable Diffusion txt2img HTTP endpoint.
type Client struct {
	baseURL    string
	steps      int
	width      int
	height     int
	guidance   float64
	httpClient *http.Client
}

// New creates a Client. fast trades quality for speed by lowering the
// step count and resolution.
func New(cfg config.ImagesConfig, fast bool) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		steps:      cfg.Steps,
		width:      cfg.Width,
		height:     cfg.Height,
		guidance:   cfg.GuidanceScale,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}
	if fast {
		c.steps = cfg.FastSteps
		c.width = cfg.FastWidth
		c.height = cfg.FastHeight
	}
	return c
}

type txt2imgRequest struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CFGScale       float64 `json:"cfg_scale"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// Generate renders one image for the prompt and returns its encoded
// bytes. One request per scene, sequential by default, no retry.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := txt2imgRequest{
		Prompt:         TruncatePrompt(prompt, maxPromptWords),
		NegativePrompt: "low quality, blurry",
		Steps:          c.steps,
		Width:          c.width,
		Height:         c.height,
		CFGScale:       c.guidance,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &types.ServiceError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.ServiceError{Service: serviceName, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &types.ServiceError{Service: serviceName, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var decoded txt2imgResponse
	if err := json.Unmarshal(respBytes, &decoded); err != nil {
		return nil, &types.ServiceError{Service: serviceName, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(decoded.Images) == 0 {
		return nil, &types.ServiceError{Service: serviceName, Err: fmt.Errorf("response contains no images")}
	}

	data, err := base64.StdEncoding.DecodeString(decoded.Images[0])
	if err != nil {
		return nil, &types.ServiceError{Service: serviceName, Err: fmt.Errorf("decode image: %w", err)}
	}
	if len(data) < 100 {
		return nil, &types.ServiceError{Service: serviceName, Err: fmt.Errorf("image too small (%d bytes)", len(data))}
	}
	return data, nil
}

// TruncatePrompt caps a prompt at maxWords words.
func TruncatePrompt(prompt string, maxWords int) string {
	words := strings.Fields(prompt)
	if len(words) <= maxWords {
		return prompt
	}
	return strings.Join(words[:maxWords], " ")
}
