package coordinator

import (
	"context"
	"time"

	"github.com/aosanya/liftkernel/internal/ai"
	"github.com/aosanya/liftkernel/internal/pumpmodel"
	"github.com/sirupsen/logrus"
)

// Config configures a Coordinator, grounded on the teacher's
// orchestration.Coordinator constructor shape.
type Config struct {
	LLM     ai.LLMClient // optional; nil disables LLM-assisted synthesis
	Model   *pumpmodel.Model
	Logger  *logrus.Logger
	Timeout time.Duration
}

// Coordinator implements C5.
type Coordinator struct {
	llm     ai.LLMClient
	model   *pumpmodel.Model
	logger  *logrus.Logger
	timeout time.Duration
}

// New builds a Coordinator.
func New(cfg Config) *Coordinator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Coordinator{llm: cfg.LLM, model: cfg.Model, logger: cfg.Logger, timeout: timeout}
}

// Synthesize implements the C5 contract: a veto short-circuit, then
// either LLM-assisted or deterministic multi-objective synthesis.
func (c *Coordinator) Synthesize(ctx context.Context, in Input) Output {
	if out, ok := vetoOverride(in); ok {
		return out
	}

	if c.llm != nil {
		synthCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if out, ok := c.synthesizeWithLLM(synthCtx, in); ok {
			return out
		}
		if c.logger != nil {
			c.logger.Warn("LLM synthesis unusable, falling back to deterministic coordinator")
		}
	}

	return synthesizeDeterministic(in, c.model)
}
