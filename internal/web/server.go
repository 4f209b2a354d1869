package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/pulsar/internal/entity"
)

//go:embed index.html
var indexHTML []byte

const (
	defaultMaxFPS = 15.0
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 54 * time.Second
	sendBuffer    = 8
)

// Source is the read-only engine view the status endpoints report.
type Source interface {
	IsRunning() bool
	Preset() int
	PresetName() string
	PresetNames() []string
	Phase() float64
	Amplitude() float64
	Ticks() uint64
	EntityCount() int
}

// Config controls a Server.
type Config struct {
	Addr   string
	Source Source
	// MaxFPS caps how often frames are pushed to websocket clients.
	MaxFPS float64
	Log    *log.Logger
	Now    func() time.Time
}

// Server streams engine frames to browsers and exposes read-only status.
// It is an engine presenter; nothing it serves changes engine state.
type Server struct {
	cfg      Config
	log      *log.Logger
	upgrader websocket.Upgrader
	minGap   time.Duration

	mu      sync.RWMutex
	source  Source
	clients map[*websocketClient]bool

	// present-side state, touched only on the tick goroutine
	lastSent time.Time
	wire     wireFrame

	sent atomic.Uint64
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// StatusResponse is served by /api/status.
type StatusResponse struct {
	Running   bool    `json:"running"`
	Preset    int     `json:"preset"`
	Name      string  `json:"name"`
	Phase     float64 `json:"phase"`
	Amplitude float64 `json:"amplitude"`
	Ticks     uint64  `json:"ticks"`
	Entities  int     `json:"entities"`
	Clients   int     `json:"clients"`
}

// NewServer creates a Server. It does not listen until ListenAndServe.
func NewServer(cfg Config) *Server {
	if cfg.MaxFPS <= 0 {
		cfg.MaxFPS = defaultMaxFPS
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "[web] ", log.LstdFlags)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Server{
		cfg:     cfg,
		log:     cfg.Log,
		source:  cfg.Source,
		minGap:  time.Duration(float64(time.Second) / cfg.MaxFPS),
		clients: make(map[*websocketClient]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("listening on http://%s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// SetSource replaces the engine view served by the status endpoints.
func (s *Server) SetSource(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
}

func (s *Server) currentSource() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Sent returns how many frames were broadcast.
func (s *Server) Sent() uint64 {
	return s.sent.Load()
}

// Present broadcasts f to every client, at most MaxFPS times per second.
// Slow clients are dropped rather than allowed to stall the tick.
func (s *Server) Present(f entity.Frame) {
	now := s.cfg.Now()
	if !s.lastSent.IsZero() && now.Sub(s.lastSent) < s.minGap {
		return
	}
	if s.Clients() == 0 {
		return
	}
	s.lastSent = now

	s.wire.fill(f)
	data, err := json.Marshal(&s.wire)
	if err != nil {
		s.log.Printf("encode frame %d: %v", f.Tick, err)
		return
	}

	s.mu.Lock()
	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(s.clients, client)
			s.log.Printf("dropped slow client %s", client.conn.RemoteAddr())
		}
	}
	s.mu.Unlock()
	s.sent.Add(1)
}

func (s *Server) status() StatusResponse {
	st := StatusResponse{Clients: s.Clients()}
	if src := s.currentSource(); src != nil {
		st.Running = src.IsRunning()
		st.Preset = src.Preset()
		st.Name = src.PresetName()
		st.Phase = src.Phase()
		st.Amplitude = src.Amplitude()
		st.Ticks = src.Ticks()
		st.Entities = src.EntityCount()
	}
	return st
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.status())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	names := []string{}
	if src := s.currentSource(); src != nil {
		names = src.PresetNames()
	}
	writeJSON(w, names)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		close(client.send)
		delete(s.clients, client)
	}
}

func (s *Server) unregister(c *websocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		close(c.send)
		delete(s.clients, c)
	}
}

// readPump discards client messages and notices disconnects.
func (c *websocketClient) readPump() {
	defer func() {
		c.server.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
