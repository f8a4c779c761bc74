package state

import (
	"sort"
	"time"
)

// GamePhase is the coarse lifecycle of a game.
type GamePhase string

const (
	PhaseSetup     GamePhase = "setup"
	PhasePlaying   GamePhase = "playing"
	PhaseFinalTurn GamePhase = "final_turn"
	PhaseEnded     GamePhase = "ended"
)

// TurnPhase is the sub-phase inside a player's turn.
type TurnPhase string

const (
	TurnReady  TurnPhase = "ready"
	TurnDraw   TurnPhase = "draw"
	TurnAction TurnPhase = "action"
	TurnEnd    TurnPhase = "end"
)

// End reasons recorded on terminal states.
const (
	EndReasonDeckEmpty  = "deck_empty"
	EndReasonForfeit    = "forfeit"
	EndReasonPlayerQuit = "player_quit"
	EndReasonTimeLimit  = "time_limit"
)

// Settings are fixed when the game is created.
type Settings struct {
	GridWidth                int           `json:"grid_width"`
	GridHeight               int           `json:"grid_height"`
	StartingHandSize         int           `json:"starting_hand_size"`
	MaxHandSize              int           `json:"max_hand_size"`
	StartingEnergy           int           `json:"starting_energy"`
	EnergyPerTurn            int           `json:"energy_per_turn"`
	ActionsPerTurn           int           `json:"actions_per_turn"`
	TurnTimeLimit            time.Duration `json:"turn_time_limit"`
	MaxPlayers               int           `json:"max_players"`
	DiscardExcessDraws       bool          `json:"discard_excess_draws"`
	ChemoautotrophHomeBypass bool          `json:"chemoautotroph_home_bypass"`
	OpportunistBypass        bool          `json:"opportunist_bypass"`
}

// DefaultSettings returns the standard rules for playerCount players.
func DefaultSettings(playerCount int) Settings {
	w, h := GridSize(playerCount)
	return Settings{
		GridWidth:                w,
		GridHeight:               h,
		StartingHandSize:         5,
		MaxHandSize:              7,
		StartingEnergy:           3,
		EnergyPerTurn:            1,
		ActionsPerTurn:           3,
		TurnTimeLimit:            5 * time.Minute,
		MaxPlayers:               4,
		DiscardExcessDraws:       false,
		ChemoautotrophHomeBypass: true,
		OpportunistBypass:        true,
	}
}

// GameState is the aggregate root of one game. The engine treats a
// GameState it receives as read-only and works on a Clone.
type GameState struct {
	GameID              string                     `json:"game_id"`
	Players             []*Player                  `json:"players"`
	CurrentPlayerIndex  int                        `json:"current_player_index"`
	Phase               GamePhase                  `json:"phase"`
	TurnPhase           TurnPhase                  `json:"turn_phase"`
	TurnNumber          int                        `json:"turn_number"`
	Grid                map[Position]*CardInstance `json:"grid"`
	Detritus            []string                   `json:"detritus"`
	Settings            Settings                   `json:"settings"`
	Metadata            map[string]string          `json:"metadata,omitempty"`
	Winner              string                     `json:"winner,omitempty"`
	EndReason           string                     `json:"end_reason,omitempty"`
	FinalTurnsRemaining int                        `json:"final_turns_remaining,omitempty"`
	FinalScores         map[string]int             `json:"final_scores,omitempty"`
}

// CurrentPlayer returns the player whose turn it is.
func (s *GameState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentPlayerIndex]
}

// Player finds a player by id.
func (s *GameState) Player(id string) (*Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerIndex returns the seat of id, or -1.
func (s *GameState) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ActivePlayers returns the seats that have not forfeited.
func (s *GameState) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range s.Players {
		if !p.Forfeited {
			out = append(out, p)
		}
	}
	return out
}

// IsTerminal reports whether the game has ended.
func (s *GameState) IsTerminal() bool {
	return s.Phase == PhaseEnded
}

// Positions returns the occupied positions in row-major order.
func (s *GameState) Positions() []Position {
	out := make([]Position, 0, len(s.Grid))
	for p, inst := range s.Grid {
		if inst != nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Prune repairs a decoded snapshot: it drops empty grid cells, empty
// attachment slots and empty seats, and pins every instance's position to
// the cell holding it.
func (s *GameState) Prune() {
	if s.Grid == nil {
		s.Grid = make(map[Position]*CardInstance)
	}
	for pos, inst := range s.Grid {
		if inst == nil {
			delete(s.Grid, pos)
			continue
		}
		at := pos
		inst.Position = &at
		attachments := inst.Attachments[:0]
		for _, a := range inst.Attachments {
			if a == nil {
				continue
			}
			ap := pos
			a.Position = &ap
			a.Attachments = nil
			attachments = append(attachments, a)
		}
		if len(attachments) == 0 {
			attachments = nil
		}
		inst.Attachments = attachments
	}
	players := s.Players[:0]
	for _, p := range s.Players {
		if p != nil {
			players = append(players, p)
		}
	}
	if len(players) == 0 {
		players = nil
	}
	s.Players = players
}

// Clone returns a deep copy that shares nothing mutable with s.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	out := *s
	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Grid = make(map[Position]*CardInstance, len(s.Grid))
	for pos, inst := range s.Grid {
		out.Grid[pos] = inst.Clone()
	}
	if s.Detritus != nil {
		out.Detritus = append([]string(nil), s.Detritus...)
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	if s.FinalScores != nil {
		out.FinalScores = make(map[string]int, len(s.FinalScores))
		for k, v := range s.FinalScores {
			out.FinalScores[k] = v
		}
	}
	return &out
}
