package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ollamaClient talks to a local Ollama server.
type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
}

func newOllamaClient(cfg Config) (Client, error) {
	return &ollamaClient{
		httpClient:  newHTTPClient(cfg.Timeout),
		baseURL:     strings.TrimRight(cfg.baseURL("http://localhost:11434"), "/"),
		model:       cfg.model("llama3.1"),
		temperature: cfg.temperature(0.1),
	}, nil
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete calls /api/generate with JSON output and streaming disabled.
func (c *ollamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"format": "json",
		"stream": false,
		"options": map[string]any{
			"temperature": c.temperature,
		},
	}

	var response ollamaResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/api/generate", nil, requestBody, &response); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return response.Response, nil
}
