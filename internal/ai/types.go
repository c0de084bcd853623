// Package ai provides the LLM client abstraction the specialist agents
// and coordinator use to generate narrative reasoning text. No control
// value is ever parsed out of an LLMClient response except in the
// coordinator's schema-validated synthesis path (internal/coordinator);
// everywhere else the response is narrative only (spec.md §4.4, §9).
package ai

import (
	"context"
	"time"
)

// Provider identifies which backend an LLMClient talks to.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	ProviderLocal  Provider = "local"
)

// Message is one turn of a chat-style LLM conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is a request to the LLM.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is the LLM's reply.
type ChatResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// LLMClient is the interface every provider implements.
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	GetProvider() Provider
	GetModel() string
}

// Config configures any LLMClient.
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// New builds the configured client.
func New(cfg Config) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderLocal:
		return newLocalClient(cfg)
	default:
		return newClaudeClient(cfg)
	}
}
