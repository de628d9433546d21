// Package llm is the text-generation service adapter. The pipeline
// treats the service as an opaque text -> text function; only the
// response shape is checked here, never its content quality.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

const serviceName = "ollama"

// Client talks to a local Ollama server's generate API.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// New creates a Client with the configured endpoint and timeout.
func New(cfg config.LLMConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
	}
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate runs one non-streaming completion and returns the trimmed
// response text. There is no retry: a timeout or transport failure
// fails the calling stage immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Stream:      false,
		Temperature: c.temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &types.ServiceError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &types.ServiceError{Service: serviceName, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &types.ServiceError{
			Service: serviceName,
			Err:     fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200)),
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBytes, &decoded); err != nil {
		return "", &types.ServiceError{Service: serviceName, Err: fmt.Errorf("parse response: %w", err)}
	}
	if decoded.Error != "" {
		return "", &types.ServiceError{Service: serviceName, Err: fmt.Errorf("server error: %s", decoded.Error)}
	}
	if strings.TrimSpace(decoded.Response) == "" {
		return "", &types.ServiceError{Service: serviceName, Err: fmt.Errorf("empty response")}
	}

	return strings.TrimSpace(decoded.Response), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
