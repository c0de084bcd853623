// Package api is the kernel's thin HTTP wrapper over the decision
// driver: submit a tick's SystemState and get back a Decision, or read
// a row out of the historical dataset. Grounded on the teacher's
// internal/api server/middleware/response shape, trimmed to the three
// operations the kernel actually exposes (spec.md §6).
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aosanya/liftkernel/internal/driver"
	"github.com/aosanya/liftkernel/internal/health"
	"github.com/aosanya/liftkernel/internal/historical"
	"github.com/aosanya/liftkernel/internal/kernel"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the kernel's REST API over the decision driver.
type Server struct {
	router   *gin.Engine
	httpSrv  *http.Server
	config   ServerConfig
	driver   *driver.Driver
	reporter *health.Reporter
	logger   *logrus.Logger
}

// NewServer builds a Server wired to the decision driver and health reporter.
func NewServer(config ServerConfig, d *driver.Driver, reporter *health.Reporter, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	s := &Server{router: router, config: config, driver: d, reporter: reporter, logger: logger}

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))

	s.setupRoutes()

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.reporter.Handler())

	v1 := s.router.Group("/v1")
	{
		v1.POST("/decisions", s.postDecision)
		v1.GET("/history/:index", s.getHistory)
	}
}

// postDecision implements decide(state) over HTTP: POST a SystemState,
// get back the tick's Decision.
func (s *Server) postDecision(c *gin.Context) {
	var state kernel.SystemState
	if err := c.ShouldBindJSON(&state); err != nil {
		BadRequestError(c, "invalid system state: "+err.Error())
		return
	}

	decision, err := s.driver.Decide(c.Request.Context(), state)
	if err != nil {
		if errors.Is(err, kernel.ErrInvalidState) {
			BadRequestError(c, err.Error())
			return
		}
		s.logger.WithError(err).Error("decide failed")
		InternalError(c, "failed to compute decision")
		return
	}

	SuccessResponse(c, decision)
}

// getHistory implements state_at(index) over HTTP.
func (s *Server) getHistory(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequestError(c, "index must be an integer")
		return
	}

	state, err := s.driver.StateAt(c.Request.Context(), index)
	if err != nil {
		if errors.Is(err, historical.ErrOutOfRange) {
			NotFoundError(c, "no historical row at that index")
			return
		}
		s.logger.WithError(err).Error("history lookup failed")
		InternalError(c, "failed to read historical row")
		return
	}

	SuccessResponse(c, state)
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{"host": s.config.Host, "port": s.config.Port}).Info("starting kernel api server")
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the underlying gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
