package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/trophicgame/trophic-server-go/internal/config"
	"github.com/trophicgame/trophic-server-go/internal/game"
	"github.com/trophicgame/trophic-server-go/internal/game/cards"
)

func testServer(t *testing.T) (*TrophicServer, *httptest.Server) {
	return testServerWithEngine(t, config.EngineConfig{})
}

func testServerWithEngine(t *testing.T, engineCfg config.EngineConfig) (*TrophicServer, *httptest.Server) {
	t.Helper()

	registry, err := cards.NewRegistry([]cards.CardDefinition{
		{ID: 1, Name: "Meadow Grass", Level: cards.LevelProducer,
			Category: cards.CategoryPhotoautotroph, Domain: cards.DomainTerrestrial, VictoryPoints: 1},
	}, nil, nil)
	require.NoError(t, err)

	cfg := config.ServerConfig{WebSocket: config.WebSocketConfig{
		Address:         ":0",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}}
	s := NewTrophicServer(cfg, engineCfg, registry, nil, zaptest.NewLogger(t))
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func createMatch(t *testing.T, ts *httptest.Server, matchID string) createMatchResponse {
	t.Helper()

	deck := make([]int, 10)
	for i := range deck {
		deck[i] = 1
	}
	body, _ := json.Marshal(map[string]interface{}{
		"matchId": matchID,
		"players": []map[string]interface{}{
			{"id": "alice", "name": "Alice", "deck": deck},
			{"id": "bob", "name": "Bob", "deck": deck},
		},
	})

	resp, err := http.Post(ts.URL+"/matches", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created createMatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestCreateMatchAndFetchState(t *testing.T) {
	_, ts := testServer(t)
	created := createMatch(t, ts, "http-match")
	assert.Equal(t, "http-match", created.MatchID)
	require.NotNil(t, created.State)
	assert.Len(t, created.State.Players, 2)

	resp, err := http.Get(ts.URL + "/matches/http-match/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state game.GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "http-match", state.ID)

	// Duplicate creation is rejected.
	dupBody, _ := json.Marshal(map[string]interface{}{
		"matchId": "http-match",
		"players": []map[string]interface{}{
			{"id": "alice", "deck": []int{1, 1}},
			{"id": "bob", "deck": []int{1, 1}},
		},
	})
	dup, err := http.Post(ts.URL+"/matches", "application/json", bytes.NewReader(dupBody))
	require.NoError(t, err)
	dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)
}

func TestCreateMatchAppliesEngineDefaults(t *testing.T) {
	_, ts := testServerWithEngine(t, config.EngineConfig{
		ActionsPerTurn: 1,
		StartingHand:   3,
		MaxHandSize:    6,
		StartingEnergy: 4,
		TurnTimeLimit:  time.Minute,
	})
	created := createMatch(t, ts, "tuned-match")
	require.NotNil(t, created.State)

	settings := created.State.Settings
	assert.Equal(t, 1, settings.ActionsPerTurn)
	assert.Equal(t, 3, settings.StartingHandSize)
	assert.Equal(t, 6, settings.MaxHandSize)
	assert.Equal(t, 4, settings.StartingEnergy)
	assert.Equal(t, time.Minute, settings.TurnTimeLimit)
	// The per-player-count grid sizing still applies for two players.
	assert.Equal(t, 9, settings.GridWidth)
	assert.Equal(t, 10, settings.GridHeight)
}

func TestMatchStateNotFound(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/matches/absent/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server, matchID, playerID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?match=" + matchID + "&player=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketActionFlow(t *testing.T) {
	_, ts := testServer(t)
	createMatch(t, ts, "ws-match")

	alice := dialWS(t, ts, "ws-match", "alice")
	bob := dialWS(t, ts, "ws-match", "bob")

	submit := func(conn *websocket.Conn, action game.PlayerAction) {
		require.NoError(t, conn.WriteJSON(clientMessage{Type: "action", Action: action}))
	}
	read := func(conn *websocket.Conn, wantType string) serverMessage {
		for {
			var msg serverMessage
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			require.NoError(t, conn.ReadJSON(&msg))
			if msg.Type == wantType {
				return msg
			}
		}
	}

	submit(alice, game.PlayerAction{Type: game.ActionPlayerReady})
	msg := read(alice, "action_result")
	require.NotNil(t, msg.Result)
	assert.True(t, msg.Result.Valid)

	submit(bob, game.PlayerAction{Type: game.ActionPlayerReady})
	msg = read(bob, "action_result")
	require.NotNil(t, msg.Result)
	assert.True(t, msg.Result.Valid)
	// Both players ready: the match has started.
	assert.Equal(t, "PLAYING", msg.Result.State.Phase.String())

	// Action-result notifications are broadcast to every client.
	note := read(alice, "notification")
	assert.Equal(t, "ws-match", note.MatchID)
}

func TestWebSocketRejectsUnknownPlayer(t *testing.T) {
	_, ts := testServer(t)
	createMatch(t, ts, "reject-match")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?match=reject-match&player=mallory"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketOverridesClaimedPlayer(t *testing.T) {
	_, ts := testServer(t)
	createMatch(t, ts, "spoof-match")

	alice := dialWS(t, ts, "spoof-match", "alice")
	require.NoError(t, alice.WriteJSON(clientMessage{
		Type:   "action",
		Action: game.PlayerAction{Type: game.ActionPlayerReady, PlayerID: "bob"},
	}))

	var msg serverMessage
	for {
		alice.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, alice.ReadJSON(&msg))
		if msg.Type == "action_result" {
			break
		}
	}
	require.NotNil(t, msg.Result)
	// The ready signal was recorded for alice, not the claimed bob.
	require.True(t, msg.Result.Valid)
	p, ok := msg.Result.State.PlayerByID("alice")
	require.True(t, ok)
	assert.True(t, p.Ready)
}
