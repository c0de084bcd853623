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

// localClient talks to a local LLM server (Ollama, LM Studio, ...).
type localClient struct {
	config     Config
	httpClient *http.Client
}

func newLocalClient(cfg Config) (LLMClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:70b"
	}
	timeout := 120 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return &localClient{config: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (c *localClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := make([]map[string]string, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, map[string]string{"role": msg.Role, "content": msg.Content})
	}

	body := map[string]interface{}{
		"model":    c.modelFor(req),
		"messages": messages,
		"stream":   false,
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal local request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build local request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ai: local request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ai: local api error (status %d): %s", resp.StatusCode, raw)
	}

	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ai: decode local response: %w", err)
	}
	return &ChatResponse{Content: out.Message.Content}, nil
}

func (c *localClient) GetProvider() Provider { return ProviderLocal }
func (c *localClient) GetModel() string      { return c.config.Model }

func (c *localClient) modelFor(req *ChatRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.config.Model
}
