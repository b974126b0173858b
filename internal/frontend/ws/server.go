package ws

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/cory-johannsen/gamemaster/internal/config"
	"github.com/cory-johannsen/gamemaster/internal/gameserver"
)

// Server accepts websocket connections and runs one synchronous receive loop
// per connection: a message is fully handled, including any provider or
// verifier call, before the next message from that connection is read.
type Server struct {
	cfg        config.WebsocketConfig
	dispatcher *gameserver.Dispatcher
	registry   *gameserver.Registry
	logger     *zap.Logger

	server   *http.Server
	mu       sync.Mutex
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewServer creates a websocket server over the given dispatcher.
//
// Precondition: dispatcher, registry, and logger must be non-nil.
func NewServer(cfg config.WebsocketConfig, dispatcher *gameserver.Dispatcher, registry *gameserver.Registry, logger *zap.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		registry:   registry,
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// ListenAndServe starts the HTTP listener and blocks until Stop is called.
//
// Postcondition: The listener is closed when this method returns.
func (s *Server) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleWebsocket)

	s.mu.Lock()
	s.listener = listener
	s.server = &http.Server{Handler: mux}
	s.mu.Unlock()

	s.logger.Info("websocket server listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.cfg.Path),
		zap.Duration("startup", time.Since(start)),
	)

	if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket endpoint: %w", err)
	}
	return nil
}

// Stop closes the listener and every connection, then waits for all receive
// loops to drain. Websocket connections are hijacked from the HTTP server, so
// Close is used instead of Shutdown.
func (s *Server) Stop() {
	close(s.quit)
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server != nil {
		_ = server.Close()
	}
	s.wg.Wait()
}

// Addr returns the bound listen address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// handleWebsocket upgrades the request and runs the connection's receive loop.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("accepting websocket connection",
			zap.String("remote", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	wsConn.SetReadLimit(s.cfg.ReadLimit)

	conn := NewConn(wsConn, r.RemoteAddr)
	s.registry.Register(conn)
	s.logger.Info("player connected",
		zap.String("remote", conn.RemoteAddr()),
		zap.Int("active", s.registry.Len()),
	)

	s.wg.Add(1)
	defer s.wg.Done()
	defer func() {
		s.registry.Unregister(conn)
		_ = conn.Close()
		s.dispatcher.EndEmptySessions()
		s.logger.Info("player disconnected",
			zap.String("remote", conn.RemoteAddr()),
			zap.Int("active", s.registry.Len()),
		)
	}()

	ctx := r.Context()
	for {
		select {
		case <-s.quit:
			return
		default:
		}

		data, err := conn.Read(ctx)
		if err != nil {
			// Normal closure and dropped connections land here.
			s.logger.Debug("read loop ended",
				zap.String("remote", conn.RemoteAddr()),
				zap.Error(err),
			)
			return
		}
		s.dispatcher.Dispatch(ctx, conn, data)
	}
}
