// Package net exposes the HTTP surface: the websocket upgrade endpoint plus
// health, diagnostics, and admin routes.
package net

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/game"
	"rift-arena/server/internal/hub"
	"rift-arena/server/internal/matchmaking"
	"rift-arena/server/internal/net/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Demo deployment: all origins accepted. Lock down before exposing
	// beyond a trusted network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler bundles the shared services behind the HTTP routes.
type Handler struct {
	cfg     config.Config
	hub     *hub.Hub
	queue   *matchmaking.Queue
	matches *game.Manager
	logger  *zap.SugaredLogger
}

// NewHandler builds the route table.
func NewHandler(cfg config.Config, h *hub.Hub, q *matchmaking.Queue, mgr *game.Manager, logger *zap.SugaredLogger) http.Handler {
	handler := &Handler{cfg: cfg, hub: h, queue: q, matches: mgr, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.handleWS)
	mux.HandleFunc("/healthz", handler.handleHealthz)
	mux.HandleFunc("/metrics", handler.handleMetrics)
	mux.HandleFunc("/admin/config", handler.handleAdminConfig)
	return mux
}

// handleWS upgrades the connection and hands it to a session goroutine pair
// (read here, write in the hub pump).
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name query", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "err", err)
		return
	}

	go ws.Serve(ws.Deps{
		Hub:         h.hub,
		Queue:       h.queue,
		Matches:     h.matches,
		Logger:      h.logger,
		IdleTimeout: h.cfg.IdleTimeout,
	}, conn, name)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// handleMetrics reports queue depth, connection counters, and per-match
// simulation counters as JSON.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"queue_waiting": h.queue.Waiting(),
		"connections":   h.hub.Snapshot(),
		"matches":       h.matches.MetricsSnapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// handleAdminConfig reads and hot-updates the matchmaking timing knobs. All
// per-match tuning is fixed at match creation, so only queue timing is live.
func (h *Handler) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type adminConfig struct {
		QuorumWaitMs   *int64 `json:"quorumWaitMs,omitempty"`
		QueueTimeoutMs *int64 `json:"queueTimeoutMs,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		quorum, timeout := h.queue.Timing()
		quorumMs, timeoutMs := quorum.Milliseconds(), timeout.Milliseconds()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(adminConfig{QuorumWaitMs: &quorumMs, QueueTimeoutMs: &timeoutMs})
	case http.MethodPost:
		var body adminConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		var quorum, timeout time.Duration
		if body.QuorumWaitMs != nil {
			quorum = time.Duration(*body.QuorumWaitMs) * time.Millisecond
		}
		if body.QueueTimeoutMs != nil {
			timeout = time.Duration(*body.QueueTimeoutMs) * time.Millisecond
		}
		h.queue.SetTiming(quorum, timeout)
		h.logger.Infow("matchmaking timing updated", "quorumWait", quorum, "queueTimeout", timeout)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
