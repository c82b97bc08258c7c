package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const yandexBaseURL = "https://rest-assistant.api.cloud.yandex.net"

// yandexClient calls the Yandex Cloud AI Assistant responses API.
type yandexClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	folderID    string
	modelURI    string
	temperature float64
	maxTokens   int
}

func newYandexClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("yandex API key is required")
	}
	if cfg.FolderID == "" {
		return nil, fmt.Errorf("yandex folder ID is required")
	}

	return &yandexClient{
		httpClient:  newHTTPClient(cfg.Timeout),
		baseURL:     strings.TrimRight(cfg.baseURL(yandexBaseURL), "/"),
		apiKey:      cfg.APIKey,
		folderID:    cfg.FolderID,
		modelURI:    fmt.Sprintf("gpt://%s/%s", cfg.FolderID, cfg.model("yandexgpt-lite")),
		temperature: cfg.temperature(0.1),
		maxTokens:   cfg.maxTokens(1500),
	}, nil
}

type yandexResponse struct {
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Complete sends the prompt and returns output[0].content[0].text.
func (c *yandexClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.modelURI,
		"input": prompt,
		"completionConfig": map[string]any{
			"temperature": c.temperature,
			"maxTokens":   c.maxTokens,
		},
	}
	headers := map[string]string{
		"Authorization": "Api-Key " + c.apiKey,
		"x-folder-id":   c.folderID,
	}

	var response yandexResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/v1/responses", headers, requestBody, &response); err != nil {
		return "", fmt.Errorf("yandex: %w", err)
	}

	if len(response.Output) == 0 || len(response.Output[0].Content) == 0 {
		return "", fmt.Errorf("yandex: no output in response")
	}
	return response.Output[0].Content[0].Text, nil
}
