package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game/rules"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Store persists game states between actions.
type Store interface {
	Load(ctx context.Context, gameID string) (*state.GameState, error)
	Save(ctx context.Context, s *state.GameState) error
}

// UpdateFunc observes every accepted action.
type UpdateFunc func(gameID string, s *state.GameState, events []rules.Event)

// Manager runs games on top of the pure engine. It serializes the actions
// of each game, persists the resulting states and feeds optional replay
// recording and update listeners. Different games proceed in parallel.
type Manager struct {
	engine   *Engine
	store    Store
	logger   *zap.Logger
	recorder *ReplayRecorder

	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	listeners []UpdateFunc
}

// NewManager creates a manager over engine and store.
func NewManager(engine *Engine, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine: engine,
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetRecorder enables replay recording for games created afterwards.
func (m *Manager) SetRecorder(rr *ReplayRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorder = rr
}

// OnUpdate registers a listener for accepted actions. Listeners run while
// the game's lock is held and must not submit actions to the same game.
func (m *Manager) OnUpdate(fn UpdateFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Engine returns the engine the manager drives.
func (m *Manager) Engine() *Engine {
	return m.engine
}

func (m *Manager) gameLock(gameID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[gameID] = l
	}
	return l
}

// CreateGame initializes and stores a new game under a fresh id.
func (m *Manager) CreateGame(ctx context.Context, players []PlayerSpec, settings state.Settings) (*state.GameState, error) {
	gameID := uuid.New().String()
	s, err := m.engine.InitializeNewGame(gameID, players, settings)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save new game %s: %w", gameID, err)
	}

	m.mu.Lock()
	rr := m.recorder
	m.mu.Unlock()
	if rr != nil {
		rr.StartRecording(s)
	}

	m.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.Int("players", len(players)),
	)
	return s, nil
}

// State returns the stored state of a game.
func (m *Manager) State(ctx context.Context, gameID string) (*state.GameState, error) {
	return m.store.Load(ctx, gameID)
}

// Submit applies an action to a stored game. A rejected action is not an
// error: it comes back as an invalid Result and nothing is saved.
func (m *Manager) Submit(ctx context.Context, gameID string, action Action) (Result, error) {
	l := m.gameLock(gameID)
	l.Lock()
	defer l.Unlock()

	current, err := m.store.Load(ctx, gameID)
	if err != nil {
		return Result{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	return m.apply(ctx, gameID, current, action)
}

// ExpireTurn ends the game for the player whose turn timer ran out. turn
// is the turn number the timer was started for; if the game has moved on
// since, nothing happens.
func (m *Manager) ExpireTurn(ctx context.Context, gameID string, turn int) (Result, error) {
	l := m.gameLock(gameID)
	l.Lock()
	defer l.Unlock()

	current, err := m.store.Load(ctx, gameID)
	if err != nil {
		return Result{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	p := current.CurrentPlayer()
	if p == nil || current.Phase == state.PhaseSetup || current.IsTerminal() {
		return rejected(current, rules.Violate(rules.ReasonInvalidPhase)), nil
	}
	if current.TurnNumber != turn {
		return rejected(current, rules.Violatef(rules.ReasonInvalidPhase, "turn %d is already over", turn)), nil
	}

	m.logger.Info("turn timer expired",
		zap.String("game_id", gameID),
		zap.String("player_id", p.ID),
		zap.Int("turn", turn),
	)
	return m.apply(ctx, gameID, current, Forfeit{PlayerID: p.ID, Reason: state.EndReasonTimeLimit})
}

// apply runs action against current with the game's lock held.
func (m *Manager) apply(ctx context.Context, gameID string, current *state.GameState, action Action) (Result, error) {
	res := m.engine.ProcessAction(current, action)
	if !res.IsValid {
		return res, nil
	}
	if err := m.store.Save(ctx, res.NewState); err != nil {
		return Result{}, fmt.Errorf("save game %s: %w", gameID, err)
	}

	m.mu.Lock()
	rr := m.recorder
	listeners := append([]UpdateFunc(nil), m.listeners...)
	m.mu.Unlock()

	if rr != nil {
		rr.Record(gameID, action, res.NewState)
		if res.NewState.IsTerminal() {
			if err := rr.SaveReplay(gameID); err != nil {
				m.logger.Warn("failed to save replay", zap.String("game_id", gameID), zap.Error(err))
			}
		}
	}
	for _, fn := range listeners {
		fn(gameID, res.NewState, res.Events)
	}
	return res, nil
}

func rejected(s *state.GameState, v *rules.Violation) Result {
	return Result{NewState: s, Reason: v.Reason, ErrorMessage: v.Message}
}
