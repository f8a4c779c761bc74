package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/effects"
	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// PlayerSpec seats one player in a new game. Deck lists card ids top
// first; the engine never shuffles.
type PlayerSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Deck []int  `json:"deck"`
}

// Result is the outcome of ProcessAction. On rejection NewState is the
// state that was passed in, untouched.
type Result struct {
	IsValid      bool             `json:"is_valid"`
	NewState     *state.GameState `json:"new_state"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Reason       rules.Reason     `json:"reason,omitempty"`
	Events       []rules.Event    `json:"events,omitempty"`
}

// Engine applies actions to game states. It holds only the static tables
// and is safe for concurrent use; all per-game data lives in GameState.
type Engine struct {
	tables    *cards.Tables
	placement *rules.PlacementValidator
	abilities *effects.Resolver
	logger    *zap.Logger
}

// NewEngine creates an engine over the static card tables.
func NewEngine(tables *cards.Tables, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tables:    tables,
		placement: rules.NewPlacementValidator(tables),
		abilities: effects.NewResolver(tables, logger),
		logger:    logger,
	}
}

// Tables returns the static data the engine was built with.
func (e *Engine) Tables() *cards.Tables {
	return e.tables
}

// GetGridSize returns the board dimensions used for playerCount players.
func (e *Engine) GetGridSize(playerCount int) (width, height int) {
	return state.GridSize(playerCount)
}

// InitializeNewGame builds the setup-phase state for a new game: HOME
// cards on their anchors, decks in the given order and opening hands
// dealt. Instance ids are derived from the game id so the same inputs
// always produce the same state.
func (e *Engine) InitializeNewGame(gameID string, players []PlayerSpec, settings state.Settings) (*state.GameState, error) {
	if gameID == "" {
		return nil, fmt.Errorf("initialize game: game id is required")
	}
	if settings.GridWidth <= 0 || settings.GridHeight <= 0 {
		settings.GridWidth, settings.GridHeight = state.GridSize(len(players))
	}
	if settings.ActionsPerTurn <= 0 {
		settings.ActionsPerTurn = state.DefaultSettings(len(players)).ActionsPerTurn
	}
	if settings.MaxHandSize > 0 && settings.StartingHandSize > settings.MaxHandSize {
		return nil, fmt.Errorf("initialize game %s: starting hand of %d exceeds hand limit %d", gameID, settings.StartingHandSize, settings.MaxHandSize)
	}
	maxPlayers := settings.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > state.MaxSeats {
		maxPlayers = state.MaxSeats
	}
	if len(players) == 0 || len(players) > maxPlayers {
		return nil, fmt.Errorf("initialize game %s: %d players, want 1 to %d", gameID, len(players), maxPlayers)
	}

	homeID := e.tables.HomeCardID()
	if homeID == 0 {
		return nil, fmt.Errorf("initialize game %s: card tables have no HOME card", gameID)
	}

	s := &state.GameState{
		GameID:     gameID,
		Players:    make([]*state.Player, 0, len(players)),
		Phase:      state.PhaseSetup,
		TurnPhase:  state.TurnReady,
		Grid:       make(map[state.Position]*state.CardInstance),
		Settings:   settings,
		Metadata:   map[string]string{},
		TurnNumber: 0,
	}

	homes := state.HomePositions(settings.GridWidth, settings.GridHeight, len(players))
	seen := make(map[string]bool, len(players))
	for seat, ps := range players {
		if ps.ID == "" {
			return nil, fmt.Errorf("initialize game %s: seat %d has no player id", gameID, seat)
		}
		if seen[ps.ID] {
			return nil, fmt.Errorf("initialize game %s: duplicate player id %s", gameID, ps.ID)
		}
		seen[ps.ID] = true

		p := &state.Player{
			ID:     ps.ID,
			Name:   ps.Name,
			Energy: settings.StartingEnergy,
			Deck:   make([]state.CardRef, 0, len(ps.Deck)),
		}
		for slot, cardID := range ps.Deck {
			def, ok := e.tables.Card(cardID)
			if !ok {
				return nil, fmt.Errorf("initialize game %s: player %s deck has unknown card %d", gameID, ps.ID, cardID)
			}
			if def.Category == cards.CategoryHome {
				return nil, fmt.Errorf("initialize game %s: player %s deck contains a HOME card", gameID, ps.ID)
			}
			p.Deck = append(p.Deck, state.CardRef{
				InstanceID: instanceID(gameID, ps.ID, fmt.Sprintf("deck-%d", slot)),
				CardID:     cardID,
			})
		}
		for i := 0; i < settings.StartingHandSize; i++ {
			if _, ok := p.DrawTop(); !ok {
				break
			}
		}

		pos := homes[seat]
		if pos.X < 0 || pos.Y < 0 || pos.X >= settings.GridWidth || pos.Y >= settings.GridHeight {
			return nil, fmt.Errorf("initialize game %s: board %dx%d has no room for seat %d", gameID, settings.GridWidth, settings.GridHeight, seat)
		}
		home := state.NewInstance(state.CardRef{InstanceID: instanceID(gameID, ps.ID, "home"), CardID: homeID}, ps.ID, pos)
		home.IsHome = true
		s.Grid[pos] = home
		s.Players = append(s.Players, p)
	}

	e.logger.Info("game initialized",
		zap.String("game_id", gameID),
		zap.Int("players", len(players)),
		zap.Int("grid_width", settings.GridWidth),
		zap.Int("grid_height", settings.GridHeight),
	)
	return s, nil
}

// instanceID derives a stable instance id from its game, owner and slot.
func instanceID(gameID, owner, slot string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(gameID+"/"+owner+"/"+slot)).String()
}

// ProcessAction validates action against current and, when legal, applies
// it to a copy. current is never modified.
func (e *Engine) ProcessAction(current *state.GameState, action Action) Result {
	if current == nil {
		return Result{Reason: rules.ReasonInvalidAction, ErrorMessage: "no game state"}
	}
	if action == nil {
		return e.reject(current, nil, rules.Violatef(rules.ReasonInvalidAction, "no action"))
	}
	if err := e.precheck(current, action); err != nil {
		return e.reject(current, action, err)
	}

	next := current.Clone()
	log := rules.NewEventLog()
	if err := e.dispatch(next, action, log); err != nil {
		return e.reject(current, action, err)
	}

	e.logger.Debug("action applied",
		zap.String("game_id", next.GameID),
		zap.String("player_id", action.Actor()),
		zap.String("action", string(action.Type())),
		zap.Int("events", len(log.Events())),
	)
	if next.IsTerminal() && !current.IsTerminal() {
		e.logger.Info("game ended",
			zap.String("game_id", next.GameID),
			zap.String("reason", next.EndReason),
			zap.String("winner", next.Winner),
		)
	}
	return Result{IsValid: true, NewState: next, Events: log.Events()}
}

func (e *Engine) reject(current *state.GameState, action Action, err error) Result {
	v := rules.AsViolation(err)
	fields := []zap.Field{
		zap.String("game_id", current.GameID),
		zap.String("reason", string(v.Reason)),
		zap.String("error", v.Message),
	}
	if action != nil {
		fields = append(fields, zap.String("player_id", action.Actor()), zap.String("action", string(action.Type())))
	}
	e.logger.Debug("action rejected", fields...)
	return Result{NewState: current, Reason: v.Reason, ErrorMessage: v.Message}
}

// precheck applies the checks common to every action, in precedence order:
// game over, turn ownership, phase, remaining actions.
func (e *Engine) precheck(s *state.GameState, action Action) error {
	if s.IsTerminal() {
		return rules.Violate(rules.ReasonGameEnded)
	}
	p, ok := s.Player(action.Actor())
	if !ok || p.Forfeited {
		return rules.Violate(rules.ReasonNotYourTurn)
	}

	switch action.(type) {
	case Forfeit:
		return nil
	case PlayerReady:
		if s.Phase != state.PhaseSetup {
			if cur := s.CurrentPlayer(); cur == nil || cur.ID != p.ID {
				return rules.Violate(rules.ReasonNotYourTurn)
			}
			return rules.Violatef(rules.ReasonInvalidPhase, "players ready up during setup only")
		}
		return nil
	}

	if cur := s.CurrentPlayer(); cur == nil || cur.ID != p.ID {
		return rules.Violate(rules.ReasonNotYourTurn)
	}
	if s.Phase == state.PhaseSetup {
		return rules.Violatef(rules.ReasonInvalidPhase, "game has not started")
	}
	if !rules.AllowsTurnActions(s) {
		return rules.Violatef(rules.ReasonInvalidPhase, "%s sub-phase", s.TurnPhase)
	}
	if spendsAction(action) && p.ActionsRemaining <= 0 {
		return rules.Violate(rules.ReasonNoActionsRemaining)
	}
	return nil
}

func (e *Engine) dispatch(s *state.GameState, action Action, log *rules.EventLog) error {
	switch a := action.(type) {
	case PlayCard:
		return e.playCard(s, a, log)
	case ActivateAbility:
		return e.activateAbility(s, a, log)
	case PassTurn:
		e.endTurn(s, log)
		return nil
	case PlayerReady:
		return e.playerReady(s, a, log)
	case MoveCard:
		return e.moveCard(s, a, log)
	case RemoveCard:
		return e.removeCard(s, a, log)
	case Metamorphosis:
		return e.metamorphosis(s, a, log)
	case Forfeit:
		return e.forfeit(s, a, log)
	default:
		return rules.Violatef(rules.ReasonInvalidAction, "unsupported action %T", action)
	}
}
