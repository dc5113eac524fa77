// Package preview serves the output root over HTTP and pushes live-reload events.
package preview

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 5 * time.Second

var _ ports.PreviewServer = (*Server)(nil)

// Server is the live preview session.
type Server struct {
	host    string
	port    int
	logger  ports.Logger
	metrics http.Handler
	hub     *Hub

	mu      sync.Mutex
	started bool
	srv     *http.Server
	addr    string
}

// NewServer creates a Server for host:port. Port 0 picks a free port.
// A non-nil metrics handler is mounted at /metrics.
func NewServer(host string, port int, logger ports.Logger, metrics http.Handler) *Server {
	return &Server{
		host:    host,
		port:    port,
		logger:  logger,
		metrics: metrics,
		hub:     NewHub(),
	}
}

// Start binds the listener and serves root in the background until ctx is
// done or Close is called.
func (s *Server) Start(ctx context.Context, root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return zerr.With(zerr.Wrap(domain.ErrAlreadyServing, "cannot start preview"), "addr", s.addr)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to bind preview server"), "addr", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	mux.Handle("/", injectReload(noCache(http.FileServer(http.Dir(root)))))

	s.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       300 * time.Second,
	}
	s.addr = ln.Addr().String()
	s.started = true

	srv := s.srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(zerr.Wrap(err, "preview server stopped"))
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.hub.closedCh():
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// NotifyReload pushes a reload event to every connected client.
func (s *Server) NotifyReload() {
	s.hub.Broadcast()
}

// Clients returns the number of connected live-reload clients.
func (s *Server) Clients() int {
	return s.hub.Clients()
}

// Close disconnects every client and stops the server. It is safe to call more than once.
func (s *Server) Close() error {
	s.hub.Shutdown()

	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return zerr.Wrap(err, "failed to stop preview server")
	}
	return nil
}

// noCache keeps browsers from serving stale assets after a rebuild.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
