package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/config"
	"github.com/biomasters/biomasters-server-go/internal/game"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Message types on the relay socket.
const (
	MsgCreateGame     = "create_game"
	MsgJoinGame       = "join_game"
	MsgAction         = "action"
	MsgState          = "state"
	MsgGameState      = "game_state"
	MsgActionRejected = "action_rejected"
	MsgError          = "error"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// WSMessage is the frame exchanged with clients. Data carries an action
// envelope for "action", the create request for "create_game" and a
// payload object for server messages.
type WSMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// CreateGameRequest is the data of a create_game message.
type CreateGameRequest struct {
	Players []game.PlayerSpec `json:"players"`
}

// GameStatePayload is pushed to every client of a game after each
// accepted action.
type GameStatePayload struct {
	State    *state.GameState `json:"state"`
	Events   []rules.Event    `json:"events,omitempty"`
	Checksum string           `json:"checksum,omitempty"`
}

// RejectionPayload goes back to the client whose action was rejected.
type RejectionPayload struct {
	Reason  rules.Reason `json:"reason"`
	Message string       `json:"message"`
}

// Relay carries actions from WebSocket clients to a game.Manager and
// pushes the resulting states back. It adds no game rules of its own.
type Relay struct {
	manager  *game.Manager
	rules    config.RulesConfig
	cfg      config.WebSocketConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
	hub      *Hub
}

// NewRelay creates a relay and subscribes it to the manager's updates.
// Call Run to start delivering messages.
func NewRelay(manager *game.Manager, cfg config.WebSocketConfig, rulesCfg config.RulesConfig, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		manager: manager,
		rules:   rulesCfg,
		cfg:     cfg,
		logger:  logger,
		hub:     newHub(logger),
	}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     r.checkOrigin,
	}
	manager.OnUpdate(r.broadcastUpdate)
	return r
}

// Run delivers messages until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.hub.run(ctx)
}

// Handler returns the HTTP handler serving the socket at the configured
// path.
func (r *Relay) Handler() http.Handler {
	path := r.cfg.Path
	if path == "" {
		path = "/ws"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, r.serveWS)
	return mux
}

// An empty allow-list accepts any origin.
func (r *Relay) checkOrigin(req *http.Request) bool {
	if len(r.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := req.Header.Get("Origin")
	for _, allowed := range r.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (r *Relay) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	if r.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(r.cfg.MaxMessageSize)
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !r.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(r)
}

func (r *Relay) handleMessage(ctx context.Context, c *Client, msg WSMessage) {
	r.logger.Debug("relay message",
		zap.String("type", msg.Type),
		zap.String("game_id", msg.GameID),
		zap.String("player_id", msg.PlayerID),
	)

	switch msg.Type {
	case MsgCreateGame:
		r.createGame(ctx, c, msg)
	case MsgJoinGame:
		r.joinGame(ctx, c, msg)
	case MsgAction:
		r.submitAction(ctx, c, msg)
	case MsgState:
		gameID, _ := c.subscription()
		if gameID == "" {
			r.sendError(c, "join a game first")
			return
		}
		r.sendState(ctx, c, gameID)
	default:
		r.sendError(c, "unknown message type "+msg.Type)
	}
}

func (r *Relay) createGame(ctx context.Context, c *Client, msg WSMessage) {
	playerID := strings.TrimSpace(msg.PlayerID)
	if playerID == "" {
		r.sendError(c, "player_id is required")
		return
	}
	var req CreateGameRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.sendError(c, "invalid create_game data")
		return
	}
	if len(req.Players) == 0 {
		r.sendError(c, "players are required")
		return
	}

	s, err := r.manager.CreateGame(ctx, req.Players, r.rules.Settings(len(req.Players)))
	if err != nil {
		r.sendError(c, err.Error())
		return
	}
	r.logger.Info("game created over relay", zap.String("game_id", s.GameID), zap.String("player_id", playerID))
	c.subscribe(s.GameID, playerID)
	r.sendPayload(c, MsgGameState, s.GameID, "", GameStatePayload{State: s, Checksum: checksum(s)})
}

func (r *Relay) joinGame(ctx context.Context, c *Client, msg WSMessage) {
	gameID := strings.TrimSpace(msg.GameID)
	playerID := strings.TrimSpace(msg.PlayerID)
	if gameID == "" {
		r.sendError(c, "game_id is required")
		return
	}
	if playerID == "" {
		r.sendError(c, "player_id is required")
		return
	}

	s, err := r.manager.State(ctx, gameID)
	if err != nil {
		r.sendError(c, "game not found")
		return
	}
	if _, ok := s.Player(playerID); !ok {
		r.sendError(c, "player not part of this game")
		return
	}
	c.subscribe(gameID, playerID)
	r.logger.Info("player joined game", zap.String("game_id", gameID), zap.String("player_id", playerID))
	r.sendPayload(c, MsgGameState, gameID, "", GameStatePayload{State: s, Checksum: checksum(s)})
}

func (r *Relay) submitAction(ctx context.Context, c *Client, msg WSMessage) {
	gameID, playerID := c.subscription()
	if gameID == "" {
		r.sendError(c, "join a game first")
		return
	}

	action, err := game.DecodeAction(msg.Data)
	if err != nil {
		r.sendRejection(c, gameID, err)
		return
	}
	if action.Actor() != playerID {
		r.sendRejection(c, gameID, rules.Violatef(rules.ReasonInvalidAction, "actions must be sent as %s", playerID))
		return
	}

	res, err := r.manager.Submit(ctx, gameID, action)
	if err != nil {
		r.logger.Error("submit action failed", zap.String("game_id", gameID), zap.Error(err))
		r.sendError(c, "game unavailable")
		return
	}
	if !res.IsValid {
		r.sendPayload(c, MsgActionRejected, gameID, "", RejectionPayload{Reason: res.Reason, Message: res.ErrorMessage})
	}
}

func (r *Relay) sendState(ctx context.Context, c *Client, gameID string) {
	s, err := r.manager.State(ctx, gameID)
	if err != nil {
		r.sendError(c, "game not found")
		return
	}
	r.sendPayload(c, MsgGameState, gameID, "", GameStatePayload{State: s, Checksum: checksum(s)})
}

// broadcastUpdate runs as a manager listener, with the game's lock held.
func (r *Relay) broadcastUpdate(gameID string, s *state.GameState, events []rules.Event) {
	data, err := encode(MsgGameState, gameID, "", GameStatePayload{State: s, Events: events, Checksum: checksum(s)})
	if err != nil {
		r.logger.Error("failed to encode game state", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	r.hub.broadcast(gameID, data)
}

func (r *Relay) sendRejection(c *Client, gameID string, err error) {
	v := rules.AsViolation(err)
	r.sendPayload(c, MsgActionRejected, gameID, "", RejectionPayload{Reason: v.Reason, Message: v.Message})
}

func (r *Relay) sendError(c *Client, message string) {
	r.sendPayload(c, MsgError, "", "", map[string]string{"error": message})
}

func (r *Relay) sendPayload(c *Client, msgType, gameID, playerID string, payload any) {
	data, err := encode(msgType, gameID, playerID, payload)
	if err != nil {
		r.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	r.hub.sendTo(c, data)
}

func encode(msgType, gameID, playerID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, GameID: gameID, PlayerID: playerID, Data: data})
}

func checksum(s *state.GameState) string {
	sum, err := game.ComputeChecksum(s)
	if err != nil {
		return ""
	}
	return sum.Hash
}

// Client is one socket connection. A client follows at most one game.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	gameID   string
	playerID string
}

func (c *Client) subscribe(gameID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID, c.playerID = gameID, playerID
}

func (c *Client) subscription() (gameID, playerID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID, c.playerID
}

func (c *Client) readPump(r *Relay) {
	defer func() {
		r.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			r.sendError(c, "malformed message")
			continue
		}
		r.handleMessage(context.Background(), c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub owns the set of connected clients. Every write to a client's send
// channel goes through the hub so a channel is never written after it is
// closed.
type Hub struct {
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[*Client]bool
	closed  bool
}

func newHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*Client]bool)}
}

// run blocks until ctx is done, then disconnects every client.
func (h *Hub) run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.logger.Info("relay stopped")
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = true
	h.logger.Debug("client registered", zap.Int("clients", len(h.clients)))
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		gameID, playerID := c.subscription()
		h.logger.Debug("client unregistered", zap.String("game_id", gameID), zap.String("player_id", playerID))
	}
}

// sendTo queues data for one client. A client whose buffer is full is
// dropped.
func (h *Hub) sendTo(c *Client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(c, data)
}

func (h *Hub) broadcast(gameID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if id, _ := c.subscription(); id == gameID {
			h.deliver(c, data)
		}
	}
}

func (h *Hub) deliver(c *Client, data []byte) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		delete(h.clients, c)
		close(c.send)
		h.logger.Warn("dropped slow client")
	}
}
