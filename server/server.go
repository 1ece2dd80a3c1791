// Package server exposes the question pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/pipeline"
	"github.com/richinex/healthrouter/tools"
)

// DefaultRequestTimeout bounds one /chat request.
const DefaultRequestTimeout = 60 * time.Second

// Service answers questions. Implemented by *pipeline.Pipeline.
type Service interface {
	Ready() bool
	Answer(ctx context.Context, question string) (model.AnswerEnvelope, error)
	Tools() []tools.ToolMetadata
}

// Server holds the HTTP handlers.
type Server struct {
	service        Service
	requestTimeout time.Duration
	logger         *logrus.Logger
}

// New creates a server. A zero timeout uses DefaultRequestTimeout.
func New(service Service, requestTimeout time.Duration, logger *logrus.Logger) *Server {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{service: service, requestTimeout: requestTimeout, logger: logger}
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware(), recoveryMiddleware(s.logger), loggingMiddleware(s.logger))

	router.POST("/chat", s.Chat)
	router.GET("/health", s.Health)
	router.GET("/tools", s.Tools)

	metrics := promhttp.Handler()
	router.GET("/metrics", func(c *gin.Context) {
		metrics.ServeHTTP(c.Writer, c.Request)
	})
	return router
}

type chatRequest struct {
	Query string `json:"query"`
}

// Chat is the handler for POST /chat.
func (s *Server) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "query must not be empty"})
		return
	}
	if !s.service.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": model.ErrNotReady.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()
	ctx = pipeline.WithRequestID(ctx, c.GetString("request_id"))

	envelope, err := s.service.Answer(ctx, req.Query)
	if err != nil {
		status, detail := errorResponse(err)
		s.logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"status":     status,
		}).WithError(err).Warn("chat request failed")
		c.JSON(status, gin.H{"detail": detail})
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// errorResponse maps pipeline errors to a status code and a caller-facing
// detail message.
func errorResponse(err error) (int, string) {
	var idxErr *model.IndexUnavailableError
	var synthErr *model.SynthesisError

	switch {
	case errors.Is(err, model.ErrEmptyQuestion):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrNotReady):
		return http.StatusServiceUnavailable, model.ErrNotReady.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out."
	case errors.As(err, &idxErr):
		return http.StatusInternalServerError, "Document index unavailable."
	case errors.As(err, &synthErr):
		return http.StatusInternalServerError, "Failed to generate an answer."
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}

// Health is the handler for GET /health.
func (s *Server) Health(c *gin.Context) {
	if s.service.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Application is running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "degraded",
		"message": "Application is running but agent is not initialized",
	})
}

// Tools is the handler for GET /tools.
func (s *Server) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.service.Tools()})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
