package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gumcp/gumcp-go/internal/config"
	"github.com/gumcp/gumcp-go/internal/connector"
)

// Server runs the MCP surface on the configured transport. In HTTP mode the
// streamable MCP endpoint is mounted next to the health, metrics and
// discovery routes; in stdio mode only the MCP protocol is served.
type Server struct {
	cfg      *config.Config
	mcp      *MCPServer
	registry *connector.Registry
	logger   *zap.Logger
}

// New creates the transport server around an assembled MCP surface.
func New(cfg *config.Config, mcp *MCPServer, registry *connector.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		mcp:      mcp,
		registry: registry,
		logger:   logger.Named("server"),
	}
}

// Run serves until ctx is cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	default:
		s.logger.Info("starting MCP server", zap.String("transport", "stdio"))
		if err := mcpserver.ServeStdio(s.mcp.MCP()); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP stdio server error: %w", err)
		}
		return nil
	}
}

func (s *Server) runHTTP(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		zap.String("transport", "streamable-http"),
		zap.String("listen", s.cfg.Listen))

	httpServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	case err := <-errs:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func (s *Server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/connectors", s.handleListConnectors)

	r.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp.MCP()))
	return r
}

// connectorInfo is the discovery representation of one provider.
type connectorInfo struct {
	Name     string   `json:"name"`
	AuthKind string   `json:"auth_kind"`
	Scopes   []string `json:"scopes,omitempty"`
	Tools    []string `json:"tools"`
}

func (s *Server) handleListConnectors(w http.ResponseWriter, _ *http.Request) {
	infos := make([]connectorInfo, 0)
	for _, name := range s.registry.Names() {
		c, _ := s.registry.Get(name)
		desc := c.Descriptor()

		info := connectorInfo{
			Name:     desc.Name,
			AuthKind: string(desc.AuthKind),
			Scopes:   desc.Scopes,
		}
		for _, tool := range c.Tools() {
			info.Tools = append(info.Tools, tool.Name)
		}
		infos = append(infos, info)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"connectors": infos}); err != nil {
		s.logger.Warn("failed to encode connector listing", zap.Error(err))
	}
}
