package agents

import (
	"context"
	"sync"
	"time"

	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/sirupsen/logrus"
)

// FanOut runs every registered specialist concurrently, bounding each
// by deadline. A specialist that exceeds its deadline is replaced by a
// TimeoutStub; it does not cancel its siblings (spec.md §4.4, §5).
// Grounded on the teacher's internal/orchestration/engine.go worker
// fan-out shape and internal/agent/agent.go's context-with-cancel +
// errChan pattern, collapsed into one bounded-parallel call since the
// kernel always dispatches exactly six fixed tasks per tick rather than
// draining an open-ended task queue.
func FanOut(ctx context.Context, registry *Registry, in AssessInput, deadline time.Duration, logger *logrus.Logger) []kernel.Recommendation {
	specialists := registry.All()
	results := make([]kernel.Recommendation, len(specialists))

	var wg sync.WaitGroup
	wg.Add(len(specialists))

	for i, s := range specialists {
		go func(i int, s Specialist) {
			defer wg.Done()
			results[i] = runWithDeadline(ctx, s, in, deadline, logger)
		}(i, s)
	}

	wg.Wait()
	return results
}

func runWithDeadline(ctx context.Context, s Specialist, in AssessInput, deadline time.Duration, logger *logrus.Logger) kernel.Recommendation {
	agentCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	done := make(chan kernel.Recommendation, 1)
	go func() {
		done <- s.Assess(agentCtx, in)
	}()

	select {
	case rec := <-done:
		return rec
	case <-agentCtx.Done():
		if logger != nil {
			logger.WithField("agent", s.Name()).Warn("specialist exceeded deadline, substituting stub")
		}
		return TimeoutStub(s.Name())
	}
}
