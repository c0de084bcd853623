package agents

import (
	"context"

	"github.com/aosanya/liftkernel/internal/ai"
)

// narrate asks the LLM for human-readable reasoning text. Its output
// is never parsed for control values (spec.md §4.4, §9): on any error
// it falls back to a static narrative and the tick continues, per the
// "transient reasoning errors are swallowed at the agent boundary"
// error-handling policy (spec.md §7).
func narrate(ctx context.Context, llm ai.LLMClient, systemPrompt, userPrompt, fallback string) string {
	if llm == nil {
		return fallback
	}
	resp, err := llm.Chat(ctx, &ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil || resp.Content == "" {
		return fallback
	}
	return resp.Content
}
