package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// State represents the server state.
type State int32

const (
	// StateStopped indicates the server is stopped.
	StateStopped State = iota
	// StateStarting indicates the server is starting.
	StateStarting
	// StateRunning indicates the server is running.
	StateRunning
	// StateStopping indicates the server is stopping.
	StateStopping
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Server runs an http.Server for a handler.
type Server struct {
	name     string
	cfg      config.Listener
	handler  http.Handler
	logger   observability.Logger
	state    atomic.Int32
	server   *http.Server
	addr     net.Addr
	done     chan struct{}
	serveErr error

	mu        sync.RWMutex
	startTime time.Time
}

// ServerOption is a functional option for configuring the server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for the server.
func WithServerLogger(logger observability.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithServerName sets the name used in log lines.
func WithServerName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// NewServer creates a stopped server.
func NewServer(cfg config.Listener, handler http.Handler, opts ...ServerOption) (*Server, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	s := &Server{
		name:    "gateway",
		cfg:     cfg,
		handler: handler,
		logger:  observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(StateStopped))

	return s, nil
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return net.JoinHostPort(s.cfg.Address, strconv.Itoa(s.cfg.Port))
}

// Addr returns the bound address once running, nil otherwise.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("server %s is not in stopped state", s.name)
	}

	addr := s.Address()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout.Duration(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout.Duration(),
		IdleTimeout:       s.cfg.IdleTimeout.Duration(),
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	s.mu.Lock()
	s.server = srv
	s.addr = ln.Addr()
	s.done = make(chan struct{})
	s.serveErr = nil
	s.startTime = time.Now()
	s.mu.Unlock()

	go s.serve(srv, ln)

	s.state.Store(int32(StateRunning))
	s.logger.Info("server started",
		observability.String("name", s.name),
		observability.String("address", ln.Addr().String()),
	)

	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener) {
	defer close(s.done)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server error",
			observability.String("name", s.name),
			observability.Error(err),
		)
		s.mu.Lock()
		s.serveErr = err
		s.mu.Unlock()
	}
}

// Stop shuts the server down gracefully. Without a deadline on ctx the
// configured shutdown timeout applies; when it expires open connections
// are closed.
func (s *Server) Stop(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		return fmt.Errorf("server %s is not running", s.name)
	}

	s.logger.Info("stopping server", observability.String("name", s.name))

	if _, ok := ctx.Deadline(); !ok {
		timeout := s.cfg.ShutdownTimeout.Duration()
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.mu.RLock()
	srv, done := s.server, s.done
	s.mu.RUnlock()

	err := srv.Shutdown(ctx)
	if err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		err = fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}
	<-done

	s.mu.Lock()
	s.addr = nil
	s.mu.Unlock()
	s.state.Store(int32(StateStopped))

	s.logger.Info("server stopped", observability.String("name", s.name))
	return err
}

// State returns the current server state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	if !s.IsRunning() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Err returns the error that ended serving, if any.
func (s *Server) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serveErr
}
