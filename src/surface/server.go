// Package surface bridges the host and the rendering surface. The surface
// connects over a loopback websocket, receives capture/window/language
// messages and sends back its terminal outcomes.
package surface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"screenshots/src/logutil"
	"screenshots/src/messages"
)

// ErrNotConnected is returned when no surface is connected.
var ErrNotConnected = errors.New("surface not connected")

const writeWait = 5 * time.Second

// Handler receives inbound surface messages. Both methods run on the
// connection's reader goroutine and must not block for long.
type Handler interface {
	// OnReady is called for every ready message, including after reloads.
	OnReady()
	// OnMessage receives ok, cancel and save.
	OnMessage(msg messages.Message)
}

// Server serves the surface's websocket, its static assets and a health
// check. At most one surface is connected; a new connection replaces the
// previous one.
type Server struct {
	router    *mux.Router
	upgrader  websocket.Upgrader
	handler   Handler
	staticDir string

	mu   sync.Mutex
	conn *websocket.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]pendingPrompt
}

// NewServer creates a server. staticDir may be empty when the surface is
// loaded from elsewhere.
func NewServer(staticDir string, h Handler) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		handler:   h,
		staticDir: staticDir,
		pending:   make(map[string]pendingPrompt),
		upgrader: websocket.Upgrader{
			// the surface is served from this host or loaded from disk
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/surface", s.handleSurface)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// Router exposes the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// Serve listens on addr until ctx ends.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logutil.WithComponent("surface").Info().Str("addr", addr).Msg("surface server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.closeConn()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	}
}

// Connected reports whether a surface is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send writes msg to the connected surface.
func (s *Server) Send(msg messages.Message) error {
	conn := s.current()
	if conn == nil {
		return ErrNotConnected
	}
	return s.sendTo(conn, msg)
}

func (s *Server) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Server) sendTo(conn *websocket.Conn, msg messages.Message) error {
	data, err := messages.Encode(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"connected": s.Connected(),
	})
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	log := logutil.WithComponent("surface")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.mu.Lock()
	prev := s.conn
	s.conn = conn
	s.mu.Unlock()
	if prev != nil {
		log.Info().Msg("surface reconnected, dropping previous connection")
		prev.Close()
	}
	log.Info().Str("remote", r.RemoteAddr).Msg("surface connected")

	defer func() {
		conn.Close()
		s.mu.Lock()
		current := s.conn == conn
		if current {
			s.conn = nil
		}
		s.mu.Unlock()
		// prompts sent over this connection can no longer be answered,
		// whether it dropped or was replaced
		s.cancelPending(conn)
		if current {
			log.Info().Msg("surface disconnected")
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("surface read failed")
			}
			return
		}
		msg, err := messages.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("raw", logutil.Truncate(string(data), 120)).Msg("dropping surface message")
			continue
		}
		s.dispatch(msg)
	}
}

func (s *Server) dispatch(msg messages.Message) {
	switch m := msg.(type) {
	case messages.Ready:
		if s.handler != nil {
			s.handler.OnReady()
		}
	case messages.SaveDialogResult:
		s.resolvePending(m)
	case messages.OK, messages.Cancel, messages.Save:
		if s.handler != nil {
			s.handler.OnMessage(msg)
		}
	default:
		logutil.WithComponent("surface").Debug().Str("type", msg.Type()).Msg("unexpected message from surface")
	}
}

func (s *Server) closeConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
		s.cancelPending(conn)
	}
}
