package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type claudeClient struct {
	config     Config
	httpClient *http.Client
}

func newClaudeClient(cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: claude api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	timeout := 60 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &claudeClient{config: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (c *claudeClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	systemMsg := ""
	messages := make([]map[string]interface{}, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			systemMsg = msg.Content
			continue
		}
		messages = append(messages, map[string]interface{}{"role": msg.Role, "content": msg.Content})
	}

	body := map[string]interface{}{
		"model":      c.modelFor(req),
		"messages":   messages,
		"max_tokens": c.maxTokensFor(req),
	}
	if systemMsg != "" {
		body["system"] = systemMsg
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal claude request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build claude request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ai: claude request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ai: claude api error (status %d): %s", resp.StatusCode, raw)
	}

	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ai: decode claude response: %w", err)
	}

	text := ""
	for _, c := range out.Content {
		text += c.Text
	}
	return &ChatResponse{Content: text, FinishReason: out.StopReason}, nil
}

func (c *claudeClient) GetProvider() Provider { return ProviderClaude }
func (c *claudeClient) GetModel() string      { return c.config.Model }

func (c *claudeClient) modelFor(req *ChatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.config.Model
}

func (c *claudeClient) maxTokensFor(req *ChatRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.config.MaxTokens > 0 {
		return c.config.MaxTokens
	}
	return 1024
}
