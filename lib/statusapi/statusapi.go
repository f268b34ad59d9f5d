// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statusapi serves a read-only HTTP view of the daemon:
//
//	GET /healthz          liveness and chat session readiness
//	GET /v1/ticks/last    the last tick record
//
// It never changes state.
package statusapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bureau-foundation/rolesync/lib/tickstate"
)

const shutdownTimeout = 5 * time.Second

// StateReader supplies the last tick record. *tickstate.Recorder
// implements it.
type StateReader interface {
	Current() (tickstate.Record, bool)
}

// Handler serves the status routes.
type Handler struct {
	state   StateReader
	ready   func() bool
	version string
}

// NewHandler returns a Handler. ready may be nil when there is no chat
// session.
func NewHandler(state StateReader, ready func() bool, version string) *Handler {
	return &Handler{state: state, ready: ready, version: version}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status       string     `json:"status"`
	Version      string     `json:"version"`
	SessionReady bool       `json:"session_ready"`
	LastTick     *time.Time `json:"last_tick,omitempty"`
}

// RegisterRoutes adds the status routes to router.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.GetHealth)
	v1 := router.Group("/v1")
	v1.GET("/ticks/last", h.GetLastTick)
}

// GetHealth reports liveness. It always answers 200 while the process
// serves requests; session_ready carries gateway state.
func (h *Handler) GetHealth(c *gin.Context) {
	response := HealthResponse{Status: "ok", Version: h.version, SessionReady: h.ready == nil || h.ready()}
	if record, ok := h.state.Current(); ok {
		finished := record.Last.Finished
		response.LastTick = &finished
	}
	c.JSON(http.StatusOK, response)
}

// GetLastTick returns the last tick record, or 404 before the first.
func (h *Handler) GetLastTick(c *gin.Context) {
	record, ok := h.state.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no tick recorded yet"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// NewRouter returns a gin engine with the status routes and request
// logging through logger.
func NewRouter(handler *Handler, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	handler.RegisterRoutes(router)
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("status request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Serve listens on address and serves router until ctx is cancelled,
// then shuts down gracefully. It returns nil after a clean shutdown.
func Serve(ctx context.Context, address string, router http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("status api: %w", err)
	}
	return serveListener(ctx, listener, router, logger)
}

func serveListener(ctx context.Context, listener net.Listener, router http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("status api listening", "address", listener.Addr().String())

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(listener) }()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status api shutdown: %w", err)
	}
	return nil
}
