package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Transport names accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions configures the network transports.
type ServeOptions struct {
	// Port is the listening port for sse and http.
	Port int
	// Routes are mounted next to the MCP endpoints (e.g. /metrics).
	Routes map[string]http.Handler
}

// Serve runs the server on transport until ctx is done.
func (s *Server) Serve(ctx context.Context, transport string, opts ServeOptions) error {
	switch transport {
	case "", TransportStdio:
		return s.ServeStdio(ctx)
	case TransportSSE, TransportHTTP:
		return s.serveNetwork(ctx, transport, opts)
	}
	return fmt.Errorf("unknown transport %q (expected %s, %s or %s)", transport, TransportStdio, TransportSSE, TransportHTTP)
}

// ServeStdio serves JSON-RPC on stdin/stdout. Logs must not go to stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("MCP server listening", "transport", TransportStdio, "tools", len(s.tools))
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler for a network transport.
func (s *Server) Handler(transport string, opts ServeOptions) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	switch transport {
	case TransportSSE:
		baseURL := fmt.Sprintf("http://localhost:%d", opts.Port)
		sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
		r.Handle("/sse", sse.SSEHandler())
		r.Handle("/message", sse.MessageHandler())
	case TransportHTTP:
		r.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer))
	default:
		return nil, fmt.Errorf("transport %q has no HTTP handler", transport)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for pattern, h := range opts.Routes {
		r.Handle(pattern, h)
	}
	return r, nil
}

func (s *Server) serveNetwork(ctx context.Context, transport string, opts ServeOptions) error {
	handler, err := s.Handler(transport, opts)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening", "transport", transport, "address", httpServer.Addr, "tools", len(s.tools))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
