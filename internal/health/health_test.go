package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aosanya/liftkernel/internal/forecast"
	"github.com/aosanya/liftkernel/internal/health"
	"github.com/aosanya/liftkernel/internal/historical"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandler_HealthyWhenEverythingLoaded(t *testing.T) {
	fc := forecast.New(forecast.DefaultModel())
	dataset := historical.NewMemoryDataset([]kernel.SystemState{{HistoryIndex: 0}})
	reporter := health.NewReporter(health.NewForecasterCheck(fc), health.NewDatasetCheck(dataset))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	reporter.Handler()(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHandler_DegradedWhenDatasetEmpty(t *testing.T) {
	fc := forecast.New(forecast.DefaultModel())
	dataset := historical.NewMemoryDataset(nil)
	reporter := health.NewReporter(health.NewForecasterCheck(fc), health.NewDatasetCheck(dataset))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	reporter.Handler()(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestHandler_DownWhenDatasetNotConfigured(t *testing.T) {
	fc := forecast.New(forecast.DefaultModel())
	reporter := health.NewReporter(health.NewForecasterCheck(fc), health.NewDatasetCheck(nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	reporter.Handler()(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"down"`)
}
