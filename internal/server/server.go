// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the aggregation pipeline and taxonomy lookups
// over HTTP.
//
// Routes:
//
//	POST /load_tsv_data  multipart field "file" -> aggregated tree
//	POST /fetchID        {"taxName": ...}       -> {"taxID": ...}
//	GET  /suggest        ?q=&limit=             -> {"names": [...]}
//	GET  /health
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/taxoburst/internal/taxonomy"
	"github.com/pdiddy/taxoburst/pkg/types"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server serves one taxonomy over HTTP. The resolver is shared by all
// requests; every aggregation builds its own tree.
type Server struct {
	cfg      types.ServerConfig
	verify   bool
	resolver taxonomy.Resolver
	logger   *zap.Logger
	metrics  *metrics
	router   *gin.Engine
}

// New builds a Server. A nil logger discards logs.
func New(cfg types.Config, r taxonomy.Resolver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg.Server,
		verify:   cfg.Aggregate.Verify,
		resolver: r,
		logger:   logger,
		metrics:  newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.POST("/load_tsv_data", s.loadTSV)
	router.POST("/fetchID", s.fetchID)
	router.GET("/suggest", s.suggest)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	return router
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errc:
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	}
	return nil
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
