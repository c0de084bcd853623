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

// openaiClient talks to the OpenAI-compatible chat completions API. It
// mirrors claudeClient's shape (same construction, same Chat contract)
// retargeted to a different wire format, matching how the teacher's
// own Provider enum already distinguishes "openai" from "claude" in
// internal/ai/types.go without wiring an implementation for it.
type openaiClient struct {
	config     Config
	httpClient *http.Client
}

func newOpenAIClient(cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: openai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := 60 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &openaiClient{config: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (c *openaiClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := make([]map[string]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	body := map[string]interface{}{
		"model":    c.modelFor(req),
		"messages": messages,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if mt := c.maxTokensFor(req); mt > 0 {
		body["max_tokens"] = mt
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ai: openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ai: openai api error (status %d): %s", resp.StatusCode, raw)
	}

	var out struct {
		Choices []struct {
			Message      Message `json:"message"`
			FinishReason string  `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ai: decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return &ChatResponse{}, nil
	}
	return &ChatResponse{Content: out.Choices[0].Message.Content, FinishReason: out.Choices[0].FinishReason}, nil
}

func (c *openaiClient) GetProvider() Provider { return ProviderOpenAI }
func (c *openaiClient) GetModel() string      { return c.config.Model }

func (c *openaiClient) modelFor(req *ChatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.config.Model
}

func (c *openaiClient) maxTokensFor(req *ChatRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return c.config.MaxTokens
}
