// Package server exposes the live simulation feed over HTTP and websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mmprofiler/internal/domain"
	"mmprofiler/internal/infra"
	"mmprofiler/internal/service"
)

const subscriberBuffer = 32

// Server publishes the feed state: JSON endpoints for the latest observation
// and run summaries, websocket streams for observations and fills.
type Server struct {
	feed     *service.FeedService
	snapHub  *hub[domain.Snapshot]
	fillHub  *hub[domain.Transaction]
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// New wires a server to the feed service on the given listen address.
func New(feed *service.FeedService, addr string) *Server {
	s := &Server{
		feed:     feed,
		snapHub:  newHub[domain.Snapshot](),
		fillHub:  newHub[domain.Transaction](),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	s.httpSrv = &http.Server{Addr: addr, Handler: s.routes()}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/results", s.handleResults)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/ws/feed", s.handleFeedStream)
	mux.HandleFunc("/ws/fills", s.handleFillStream)
	return mux
}

// PublishSnapshot updates the feed state and fans the observation out to
// websocket subscribers.
func (s *Server) PublishSnapshot(snap domain.Snapshot) {
	s.feed.ProcessSnapshot(snap)
	s.snapHub.Broadcast(snap)
}

// PublishFill records a fill and fans it out to websocket subscribers.
func (s *Server) PublishFill(tx domain.Transaction) {
	s.feed.RecordFill(tx)
	s.fillHub.Broadcast(tx)
}

// Run serves until the context ends, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("feed server listening", slog.String("addr", s.httpSrv.Addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap, ok := s.feed.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no observation yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.feed.Results())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func (s *Server) handleFeedStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sub := s.snapHub.Subscribe(subscriberBuffer)
	defer s.snapHub.Unsubscribe(sub)

	// Late joiners get the current state first.
	if snap, ok := s.feed.Latest(); ok {
		if err := conn.WriteJSON(outboundMessage{Type: "snapshot", Data: snap}); err != nil {
			return
		}
	}

	for snap := range sub.ch {
		if err := conn.WriteJSON(outboundMessage{Type: "snapshot", Data: snap}); err != nil {
			return
		}
	}
}

func (s *Server) handleFillStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sub := s.fillHub.Subscribe(subscriberBuffer)
	defer s.fillHub.Unsubscribe(sub)

	for tx := range sub.ch {
		if err := conn.WriteJSON(outboundMessage{Type: "fill", Data: tx}); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
