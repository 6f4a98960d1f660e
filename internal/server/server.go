// Package server exposes the rules engine over HTTP and websocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trophicgame/trophic-server-go/internal/config"
	"github.com/trophicgame/trophic-server-go/internal/game"
	"github.com/trophicgame/trophic-server-go/internal/game/cards"
	"github.com/trophicgame/trophic-server-go/internal/repository"
)

// TrophicServer hosts one rules engine per match and fans notifications out
// to connected websocket clients.
type TrophicServer struct {
	cfg       config.ServerConfig
	engineCfg config.EngineConfig
	logger    *zap.Logger
	registry  *cards.Registry
	matches   *matchHub
	repo      *repository.MatchRepository

	httpServer *http.Server
}

// NewTrophicServer wires the server. repo may be nil when persistence is
// disabled.
func NewTrophicServer(cfg config.ServerConfig, engineCfg config.EngineConfig, registry *cards.Registry, repo *repository.MatchRepository, logger *zap.Logger) *TrophicServer {
	s := &TrophicServer{
		cfg:       cfg,
		engineCfg: engineCfg,
		logger:    logger,
		registry:  registry,
		repo:      repo,
		matches:   newMatchHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/matches", s.handleCreateMatch)
	mux.HandleFunc("/matches/", s.handleMatchState)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    cfg.WebSocket.Address,
		Handler: mux,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *TrophicServer) Start() error {
	s.logger.Info("starting websocket server", zap.String("address", s.cfg.WebSocket.Address))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("websocket server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *TrophicServer) Shutdown(ctx context.Context) error {
	s.matches.closeAll()
	return s.httpServer.Shutdown(ctx)
}

// createMatchRequest is the POST /matches payload.
type createMatchRequest struct {
	MatchID string `json:"matchId"`
	Players []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Deck []int  `json:"deck"`
	} `json:"players"`
}

type createMatchResponse struct {
	MatchID string          `json:"matchId"`
	State   *game.GameState `json:"state"`
}

func (s *TrophicServer) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	setups := make([]game.PlayerSetup, len(req.Players))
	for i, p := range req.Players {
		setups[i] = game.PlayerSetup{ID: p.ID, Name: p.Name, Deck: p.Deck}
	}

	engine := game.NewTrophicEngine(s.registry, s.logger)
	state, err := engine.NewMatch(game.MatchConfig{
		MatchID:  req.MatchID,
		Players:  setups,
		Settings: s.matchSettings(len(setups)),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.matches.add(state.ID, engine) {
		http.Error(w, fmt.Sprintf("match %s already exists", state.ID), http.StatusConflict)
		return
	}

	engine.SetNotificationHandler(s.notificationHandler(state.ID, engine))

	s.logger.Info("match created",
		zap.String("match_id", state.ID),
		zap.Int("players", len(setups)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createMatchResponse{MatchID: state.ID, State: state})
}

func (s *TrophicServer) handleMatchState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	matchID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/matches/"), "/state")
	entry, ok := s.matches.get(matchID)
	if !ok {
		http.Error(w, fmt.Sprintf("match %s not found", matchID), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry.engine.CurrentState())
}

// matchSettings applies the configured engine defaults on top of the
// per-player-count grid sizing.
func (s *TrophicServer) matchSettings(playerCount int) game.Settings {
	settings := game.DefaultSettings(playerCount)
	if s.engineCfg.ActionsPerTurn > 0 {
		settings.ActionsPerTurn = s.engineCfg.ActionsPerTurn
	}
	if s.engineCfg.StartingHand > 0 {
		settings.StartingHandSize = s.engineCfg.StartingHand
	}
	if s.engineCfg.MaxHandSize > 0 {
		settings.MaxHandSize = s.engineCfg.MaxHandSize
	}
	if s.engineCfg.StartingEnergy > 0 {
		settings.StartingEnergy = s.engineCfg.StartingEnergy
	}
	settings.TurnTimeLimit = s.engineCfg.TurnTimeLimit
	return settings
}

func (s *TrophicServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// notificationHandler pushes engine notifications to the match's websocket
// clients and persists the result when the game ends.
func (s *TrophicServer) notificationHandler(matchID string, engine *game.TrophicEngine) game.NotificationHandler {
	return func(n game.GameNotification) {
		s.matches.broadcast(matchID, serverMessage{
			Type:      "notification",
			MatchID:   matchID,
			Event:     n.Type,
			Data:      n.Data,
			Timestamp: n.Timestamp,
		})

		if n.Type == "GAME_ENDED" {
			s.persistResult(matchID, engine)
		}
	}
}

func (s *TrophicServer) persistResult(matchID string, engine *game.TrophicEngine) {
	if s.repo == nil {
		return
	}
	state := engine.CurrentState()
	result, ok := state.Metadata[game.MetadataResultKey].(game.MatchResult)
	if !ok {
		s.logger.Warn("ended match has no result", zap.String("match_id", matchID))
		return
	}

	checksum, err := state.ComputeChecksum()
	if err != nil {
		s.logger.Error("failed to checksum final state",
			zap.String("match_id", matchID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = s.repo.Save(ctx, repository.MatchRecord{
		MatchID:    matchID,
		WinnerIDs:  result.WinnerIDs,
		Tie:        result.Tie,
		Scores:     result.Scores,
		Turns:      result.Turns,
		Checksum:   checksum.Hash,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to persist match result",
			zap.String("match_id", matchID), zap.Error(err))
	}
}

// matchHub tracks live engines and their websocket clients.
type matchHub struct {
	mu      sync.RWMutex
	entries map[string]*matchEntry
}

type matchEntry struct {
	engine *game.TrophicEngine

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newMatchHub() *matchHub {
	return &matchHub{entries: make(map[string]*matchEntry)}
}

func (h *matchHub) add(matchID string, engine *game.TrophicEngine) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.entries[matchID]; exists {
		return false
	}
	h.entries[matchID] = &matchEntry{
		engine:  engine,
		clients: make(map[*wsClient]struct{}),
	}
	return true
}

func (h *matchHub) get(matchID string) (*matchEntry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.entries[matchID]
	return entry, ok
}

func (h *matchHub) broadcast(matchID string, msg serverMessage) {
	entry, ok := h.get(matchID)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	for client := range entry.clients {
		client.send(msg)
	}
}

func (h *matchHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, entry := range h.entries {
		entry.mu.Lock()
		for client := range entry.clients {
			client.close()
		}
		entry.mu.Unlock()
	}
}

func (e *matchEntry) attach(client *wsClient) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clients[client] = struct{}{}
}

func (e *matchEntry) detach(client *wsClient) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.clients, client)
}
