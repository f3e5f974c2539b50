// Package server exposes a running reader over HTTP for folio read --listen.
// Clients can read the current position, ask the reader to jump to a page,
// and follow position events over a websocket. The same two operations are
// offered to agents as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wethinkt/go-folio/internal/events"
	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/tuilog"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int
	Auth AuthConfig
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Host: "127.0.0.1",
		Port: 8790,
	}
}

// Server serves the reader's position and navigation API.
type Server struct {
	hub    *events.Hub
	nav    pageview.Navigator
	mcp    *MCPServer
	router chi.Router
	config Config
}

// New creates a server publishing hub's events. Navigation requests are
// forwarded to nav.
func New(hub *events.Hub, nav pageview.Navigator, config Config) *Server {
	s := &Server{
		hub:    hub,
		nav:    nav,
		config: config,
	}
	s.mcp = NewMCPServer(s)
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&redactingLogFormatter{
		base: &middleware.DefaultLogFormatter{
			Logger:  log.New(tuilog.Log.Writer(), "", 0),
			NoColor: true,
		},
	}))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireToken(s.config.Auth))
		r.Get("/position", s.handleGetPosition)
		r.Post("/navigate", s.handleNavigate)
		r.Get("/events", s.handleEventsWS)
		r.Handle("/mcp", s.mcp.Handler())
	})

	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// Update port if it was auto-assigned
	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			tuilog.Log.Warn("Server.ListenAndServe: shutdown", "error", err)
		}
	}()

	tuilog.Log.Info("Server.ListenAndServe: listening", "addr", s.Addr(), "auth", s.config.Auth.Enabled(), "token_source", s.config.Auth.Source)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsMiddleware adds CORS headers for local tools and browser extensions.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
