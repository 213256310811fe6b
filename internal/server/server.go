// Package server exposes one player's quest engine to HUD clients over
// WebSocket: state changes are pushed out as JSON and progress reports
// come back in.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/questkeeper/internal/config"
	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/quest"
	"github.com/lawnchairsociety/questkeeper/internal/tracker"
)

// Server pushes quest state to HUD clients and feeds their commands to the
// engine. It holds one subscription per manager notification for its
// whole lifetime.
type Server struct {
	cfg         *config.Config
	engine      *Engine
	hub         *Hub
	connLimiter *ConnLimiter
	subs        []*quest.Subscription

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer wires the engine's manager notifications to connected clients.
// A nil cfg uses the defaults.
func NewServer(engine *Engine, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:         cfg,
		engine:      engine,
		hub:         NewHub(),
		connLimiter: NewConnLimiter(cfg.Connections),
		ctx:         ctx,
		cancel:      cancel,
	}

	template := cfg.Rewards.MessageTemplate
	if template == "" {
		template = tracker.DefaultRewardTemplate
	}

	m := engine.Manager()
	s.subs = append(s.subs,
		m.OnQuestsUpdated(func() {
			s.broadcast(buildUpdate(m))
		}),
		m.OnQuestCompleted(func(q *quest.Quest) {
			s.broadcast(CompletedMessage{
				Type:    TypeQuestCompleted,
				QuestID: q.ID,
				Title:   q.Title,
				Message: tracker.FormatReward(template, q),
			})
		}),
	)
	return s
}

// Handler returns the HTTP routes: /ws for the HUD socket and /quests for
// a one-off JSON snapshot.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/quests", s.handleQuests)
	return mux
}

// ListenAndServe serves the HUD on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.WebSocket.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	logger.Info("HUD server listening", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, detaches from the manager and
// disconnects every client.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		for _, sub := range s.subs {
			sub.Unsubscribe()
		}
		s.cancel()

		s.mu.Lock()
		srv := s.httpServer
		s.mu.Unlock()
		if srv != nil {
			err = srv.Shutdown(ctx)
		}

		s.hub.CloseAll()
		updated, completed := s.engine.Manager().ObserverCount()
		logger.Info("HUD server shutdown complete",
			"remaining_update_observers", updated,
			"remaining_completion_observers", completed)
	})
	return err
}

// ClientCount returns the number of connected HUD clients
func (s *Server) ClientCount() int {
	return s.hub.Count()
}

func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg, err := s.engine.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "quest engine unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		logger.Error("Failed to write quest snapshot", "error", err)
	}
}

// handleWebSocketUpgrade admits the client against the connection limits,
// then upgrades to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	addr := clientAddr(r)

	release, err := s.connLimiter.Admit(addr)
	if err != nil {
		logger.Warning("WebSocket connection rejected",
			"remote_addr", r.RemoteAddr,
			"client_ip", addr,
			"reason", err)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warning("WebSocket upgrade failed", "error", err)
		release()
		return
	}

	go s.serveClient(conn, addr, release)
}

// serveClient registers the client and sends the initial snapshot on the
// engine goroutine, so no broadcast can slip in between the two.
func (s *Server) serveClient(conn *websocket.Conn, addr string, release func()) {
	defer release()

	client := NewClient(conn, addr)
	err := s.engine.Do(s.ctx, func() {
		s.hub.Register(client)
		s.send(client, buildUpdate(s.engine.Manager()))
	})
	if err != nil {
		conn.Close()
		return
	}
	logger.Info("HUD client connected", "client_ip", addr)

	go client.writeLoop()
	client.readLoop(s.cfg.WebSocket.MaxMessageSize, func(data []byte) {
		s.handleMessage(client, data)
	})

	s.hub.Unregister(client)
	logger.Info("HUD client disconnected", "client_ip", addr)
}

func (s *Server) handleMessage(c *Client, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		s.send(c, newErrorMessage(fmt.Errorf("invalid message: %w", err)))
		return
	}

	reply, err := s.engine.Execute(s.ctx, cmd)
	if err != nil {
		logger.Debug("HUD command rejected", "action", cmd.Action, "client_ip", c.RemoteAddr(), "error", err)
		s.send(c, newErrorMessage(err))
		return
	}
	if reply != nil {
		s.send(c, reply)
	}
}

func (s *Server) send(c *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode HUD message", "error", err)
		return
	}
	if !c.Enqueue(data) {
		s.hub.Unregister(c)
	}
}

func (s *Server) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode HUD message", "error", err)
		return
	}
	s.hub.Broadcast(data)
}
