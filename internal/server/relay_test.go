package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/biomasters/biomasters-server-go/internal/config"
	"github.com/biomasters/biomasters-server-go/internal/game"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
	"github.com/biomasters/biomasters-server-go/internal/repository"
	"github.com/biomasters/biomasters-server-go/internal/testkit"
)

func testRules() config.RulesConfig {
	d := state.DefaultSettings(2)
	return config.RulesConfig{
		StartingHandSize:         d.StartingHandSize,
		MaxHandSize:              d.MaxHandSize,
		StartingEnergy:           d.StartingEnergy,
		EnergyPerTurn:            d.EnergyPerTurn,
		ActionsPerTurn:           d.ActionsPerTurn,
		MaxPlayers:               d.MaxPlayers,
		ChemoautotrophHomeBypass: true,
		OpportunistBypass:        true,
	}
}

func newTestManager(t *testing.T) *game.Manager {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return game.NewManager(game.NewEngine(testkit.Tables(t), logger), repository.NewMemoryStore(), logger)
}

func startRelay(t *testing.T, cfg config.WebSocketConfig) (*game.Manager, string) {
	t.Helper()
	m := newTestManager(t)
	relay := NewRelay(m, cfg, testRules(), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	go relay.Run(ctx)
	srv := httptest.NewServer(relay.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return m, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg WSMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func sendAction(t *testing.T, conn *websocket.Conn, a game.Action) {
	t.Helper()
	data, err := game.EncodeAction(a)
	require.NoError(t, err)
	send(t, conn, WSMessage{Type: MsgAction, Data: data})
}

// receive reads until a message of msgType arrives.
func receive(t *testing.T, conn *websocket.Conn, msgType string) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func decodeState(t *testing.T, msg WSMessage) GameStatePayload {
	t.Helper()
	var p GameStatePayload
	require.NoError(t, json.Unmarshal(msg.Data, &p))
	require.NotNil(t, p.State)
	return p
}

// awaitState reads game states until done accepts one.
func awaitState(t *testing.T, conn *websocket.Conn, done func(*state.GameState) bool) GameStatePayload {
	t.Helper()
	for {
		p := decodeState(t, receive(t, conn, MsgGameState))
		if done(p.State) {
			return p
		}
	}
}

func createGame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	data, err := json.Marshal(CreateGameRequest{Players: []game.PlayerSpec{
		{ID: "alice", Deck: []int{testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree}},
		{ID: "bob", Deck: []int{testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree, testkit.OakTree}},
	}})
	require.NoError(t, err)
	send(t, conn, WSMessage{Type: MsgCreateGame, PlayerID: "alice", Data: data})

	msg := receive(t, conn, MsgGameState)
	p := decodeState(t, msg)
	assert.Equal(t, state.PhaseSetup, p.State.Phase)
	assert.NotEmpty(t, p.Checksum)
	return msg.GameID
}

func TestRelayPlaysAGame(t *testing.T) {
	m, url := startRelay(t, config.WebSocketConfig{Path: "/ws"})
	alice := dial(t, url)
	bob := dial(t, url)

	gameID := createGame(t, alice)
	send(t, bob, WSMessage{Type: MsgJoinGame, GameID: gameID, PlayerID: "bob"})
	receive(t, bob, MsgGameState)

	sendAction(t, alice, game.PlayerReady{PlayerID: "alice"})
	receive(t, bob, MsgGameState)
	sendAction(t, bob, game.PlayerReady{PlayerID: "bob"})

	p := awaitState(t, alice, func(s *state.GameState) bool { return s.Phase == state.PhasePlaying })
	assert.Equal(t, "alice", p.State.CurrentPlayer().ID)

	sendAction(t, alice, game.PlayCard{PlayerID: "alice", CardID: testkit.OakTree, Position: state.Pos(2, 5)})
	p = awaitState(t, bob, func(s *state.GameState) bool {
		_, ok := s.At(state.Pos(2, 5))
		return ok
	})

	stored, err := m.State(context.Background(), gameID)
	require.NoError(t, err)
	sum, err := game.ComputeChecksum(stored)
	require.NoError(t, err)
	assert.Equal(t, sum.Hash, p.Checksum)
}

func TestRelayReportsRejections(t *testing.T) {
	_, url := startRelay(t, config.WebSocketConfig{})
	alice := dial(t, url)
	gameID := createGame(t, alice)

	sendAction(t, alice, game.PassTurn{PlayerID: "alice"})
	msg := receive(t, alice, MsgActionRejected)
	assert.Equal(t, gameID, msg.GameID)
	var rej RejectionPayload
	require.NoError(t, json.Unmarshal(msg.Data, &rej))
	assert.Equal(t, rules.ReasonInvalidPhase, rej.Reason)

	sendAction(t, alice, game.PlayerReady{PlayerID: "bob"})
	msg = receive(t, alice, MsgActionRejected)
	require.NoError(t, json.Unmarshal(msg.Data, &rej))
	assert.Equal(t, rules.ReasonInvalidAction, rej.Reason, "clients act only as themselves")

	send(t, alice, WSMessage{Type: MsgAction, Data: json.RawMessage(`{"type":"CAST_SPELL"}`)})
	msg = receive(t, alice, MsgActionRejected)
	require.NoError(t, json.Unmarshal(msg.Data, &rej))
	assert.Equal(t, rules.ReasonInvalidAction, rej.Reason)
}

func TestRelayErrors(t *testing.T) {
	_, url := startRelay(t, config.WebSocketConfig{})
	conn := dial(t, url)

	cases := []WSMessage{
		{Type: MsgAction, Data: json.RawMessage(`{"type":"PASS_TURN","player_id":"alice"}`)},
		{Type: MsgState},
		{Type: MsgJoinGame, GameID: "missing", PlayerID: "alice"},
		{Type: MsgJoinGame, PlayerID: "alice"},
		{Type: MsgCreateGame, Data: json.RawMessage(`{}`)},
		{Type: MsgCreateGame, PlayerID: "alice", Data: json.RawMessage(`{"players":[]}`)},
		{Type: "shuffle"},
	}
	for _, msg := range cases {
		send(t, conn, msg)
		got := receive(t, conn, MsgError)
		assert.NotEmpty(t, got.Data, "%s", msg.Type)
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	receive(t, conn, MsgError)
}

func TestRelayJoinRequiresSeat(t *testing.T) {
	_, url := startRelay(t, config.WebSocketConfig{})
	alice := dial(t, url)
	gameID := createGame(t, alice)

	eve := dial(t, url)
	send(t, eve, WSMessage{Type: MsgJoinGame, GameID: gameID, PlayerID: "eve"})
	msg := receive(t, eve, MsgError)
	assert.Contains(t, string(msg.Data), "not part of this game")

	send(t, alice, WSMessage{Type: MsgState})
	receive(t, alice, MsgGameState)
}

func TestRelayChecksOrigin(t *testing.T) {
	_, url := startRelay(t, config.WebSocketConfig{AllowedOrigins: []string{"https://play.example"}})

	_, resp, err := websocket.DefaultDialer.Dial(url, map[string][]string{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 403, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, map[string][]string{"Origin": {"https://play.example"}})
	require.NoError(t, err)
	conn.Close()
}
