package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/trophicgame/trophic-server-go/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// clientMessage is what a websocket client sends: a player action to submit.
type clientMessage struct {
	Type   string            `json:"type"`
	Action game.PlayerAction `json:"action"`
}

// serverMessage is what the server pushes to websocket clients.
type serverMessage struct {
	Type      string                 `json:"type"`
	MatchID   string                 `json:"matchId,omitempty"`
	Event     string                 `json:"event,omitempty"`
	Result    *game.ActionResult     `json:"result,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// wsClient is one websocket connection bound to a match and player.
type wsClient struct {
	conn     *websocket.Conn
	playerID string
	out      chan serverMessage

	closeOnce sync.Once
}

func (c *wsClient) send(msg serverMessage) {
	select {
	case c.out <- msg:
	default:
		// Slow consumer; drop the message rather than block the engine.
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.out)
	})
}

func (s *TrophicServer) upgrader() websocket.Upgrader {
	allowed := s.cfg.WebSocket.AllowedOrigins
	return websocket.Upgrader{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
}

// handleWebSocket upgrades the connection and runs the read/write pumps.
// Clients identify the match and player through query parameters.
func (s *TrophicServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match")
	playerID := r.URL.Query().Get("player")
	if matchID == "" || playerID == "" {
		http.Error(w, "match and player query parameters are required", http.StatusBadRequest)
		return
	}

	entry, ok := s.matches.get(matchID)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}
	if _, ok := entry.engine.CurrentState().PlayerByID(playerID); !ok {
		http.Error(w, "unknown player for this match", http.StatusForbidden)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("match_id", matchID), zap.Error(err))
		return
	}

	client := &wsClient{
		conn:     conn,
		playerID: playerID,
		out:      make(chan serverMessage, 32),
	}
	entry.attach(client)

	s.logger.Info("websocket client connected",
		zap.String("match_id", matchID),
		zap.String("player_id", playerID),
	)

	go s.writePump(client)
	s.readPump(entry, client, matchID)
}

// readPump consumes client messages until the connection drops. It submits
// actions to the engine and replies with the result on this connection only.
func (s *TrophicServer) readPump(entry *matchEntry, client *wsClient, matchID string) {
	defer func() {
		entry.detach(client)
		client.close()
		client.conn.Close()
		s.logger.Info("websocket client disconnected",
			zap.String("match_id", matchID),
			zap.String("player_id", client.playerID),
		)
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error",
					zap.String("match_id", matchID), zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "action":
			// The connection's player identity overrides whatever the
			// payload claims.
			msg.Action.PlayerID = client.playerID
			result := entry.engine.ProcessAction(msg.Action)
			client.send(serverMessage{
				Type:      "action_result",
				MatchID:   matchID,
				Result:    &result,
				Timestamp: time.Now(),
			})
		case "state":
			state := entry.engine.CurrentState()
			client.send(serverMessage{
				Type:      "state",
				MatchID:   matchID,
				Result:    &game.ActionResult{Valid: true, State: state},
				Timestamp: time.Now(),
			})
		default:
			client.send(serverMessage{
				Type:      "error",
				MatchID:   matchID,
				Error:     "unknown message type " + msg.Type,
				Timestamp: time.Now(),
			})
		}
	}
}

// writePump serializes outbound messages and keeps the connection alive.
func (s *TrophicServer) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.out:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
