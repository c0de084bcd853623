package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/xeipuuv/gojsonschema"
)

// synthesisSchema bounds the shape an LLM-assisted synthesis response
// must take before it is trusted, grounded on the teacher's
// registry/agent_type_service.go gojsonschema.Validate usage.
const synthesisSchema = `{
  "type": "object",
  "required": ["pump_commands", "reasoning"],
  "properties": {
    "pump_commands": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["pump_id", "start", "frequency"],
        "properties": {
          "pump_id":   {"type": "string"},
          "start":     {"type": "boolean"},
          "frequency": {"type": "number"}
        }
      }
    },
    "reasoning": {"type": "string"}
  }
}`

type llmSynthesisResponse struct {
	PumpCommands []struct {
		PumpID    string  `json:"pump_id"`
		Start     bool    `json:"start"`
		Frequency float64 `json:"frequency"`
	} `json:"pump_commands"`
	Reasoning string `json:"reasoning"`
}

// synthesizeWithLLM asks the LLM to propose a command set directly,
// validates it against synthesisSchema, and converts it to an Output
// on success. The second return value is false on any parse or
// validation failure, signaling the caller to fall back.
func (c *Coordinator) synthesizeWithLLM(ctx context.Context, in Input) (Output, bool) {
	prompt := buildSynthesisPrompt(in)
	resp, err := c.llm.Chat(ctx, &ai.ChatRequest{
		Messages: []ai.Message{
			{Role: "system", Content: "You are the coordinator for a wastewater lift station's pump control kernel. Respond with a single JSON object matching the given shape and nothing else."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil || resp.Content == "" {
		return Output{}, false
	}

	raw := extractJSON(resp.Content)
	if raw == "" {
		return Output{}, false
	}

	schemaLoader := gojsonschema.NewStringLoader(synthesisSchema)
	docLoader := gojsonschema.NewStringLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil || !result.Valid() {
		return Output{}, false
	}

	var parsed llmSynthesisResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Output{}, false
	}

	commands := make([]kernel.PumpCommand, 0, len(parsed.PumpCommands))
	for _, p := range parsed.PumpCommands {
		if _, ok := in.Specs[p.PumpID]; !ok {
			continue
		}
		freq := p.Frequency
		if !p.Start {
			freq = 0
		}
		res, err := c.model.Performance(p.PumpID, freq, in.State.L1M)
		if err != nil {
			continue
		}
		commands = append(commands, kernel.PumpCommand{
			PumpID:      p.PumpID,
			Start:       p.Start,
			FrequencyHz: freq,
			FlowM3H:     res.FlowM3H,
			PowerKW:     res.PowerKW,
			Efficiency:  res.Efficiency,
		})
	}
	if len(commands) == 0 {
		return Output{}, false
	}

	return Output{
		Commands:          commands,
		Reasoning:         parsed.Reasoning,
		PriorityApplied:   highestPriority(in.Recommendations),
		ConflictsResolved: []string{"llm_synthesis"},
		Confidence:        averageConfidence(in.Recommendations),
	}, true
}

func buildSynthesisPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tunnel level %.2fm, inflow %.0f m3/15min, price %.3f EUR/kWh.\n", in.State.L1M, in.State.F1M3Per15Min, in.State.ElectricityPriceEURPerKWh)
	b.WriteString("Specialist recommendations:\n")
	for _, r := range in.Recommendations {
		fmt.Fprintf(&b, "- %s (%s, confidence %.2f): %s\n", r.AgentName, r.Priority, r.Confidence, r.Reasoning)
	}
	b.WriteString("Respond with JSON: {\"pump_commands\": [{\"pump_id\": \"P1\", \"start\": true, \"frequency\": 48.5}, ...], \"reasoning\": \"...\"}")
	return b.String()
}

// extractJSON returns the span of s from its first '{' to its last '}',
// since LLMs frequently wrap JSON in prose or code fences. Several
// objects in one reply come back as one span, which then fails parsing.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
