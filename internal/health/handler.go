package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const checkBudget = 3 * time.Second

// Report is the /healthz response body.
type Report struct {
	Status    Status        `json:"status"`
	Checks    []CheckResult `json:"checks"`
	Timestamp time.Time     `json:"timestamp"`
}

// Reporter runs the configured readiness checks and aggregates them.
type Reporter struct {
	checks []Check
}

// NewReporter builds a Reporter over the given checks.
func NewReporter(checks ...Check) *Reporter {
	return &Reporter{checks: checks}
}

// Run executes every check and returns the aggregated report.
func (r *Reporter) Run(c *gin.Context) Report {
	results := make([]CheckResult, 0, len(r.checks))
	overall := StatusHealthy
	for _, check := range r.checks {
		res := timeoutGuard(c.Request.Context(), check, checkBudget)
		results = append(results, res)
		overall = worstOf(overall, res.Status)
	}
	return Report{Status: overall, Checks: results, Timestamp: time.Now()}
}

// worstOf ranks down < degraded < healthy and returns the worse of the two.
func worstOf(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 2, StatusDegraded: 1, StatusDown: 0}
	if rank[b] < rank[a] {
		return b
	}
	return a
}

// Handler returns the gin handler for GET /healthz: 200 when every
// check is healthy or degraded, 503 when any check is down.
func (r *Reporter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := r.Run(c)
		status := http.StatusOK
		if report.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}
