package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// ReplayStep is one accepted action and the checksum of the state it
// produced.
type ReplayStep struct {
	Action   []byte
	Checksum string
}

// Replay is a recorded game: the initial state plus every accepted action.
// Because the engine is deterministic the states in between are rebuilt
// on demand rather than stored.
type Replay struct {
	GameID       string
	Initial      *state.GameState
	Steps        []ReplayStep
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates a replay starting from initial.
func NewReplay(initial *state.GameState) *Replay {
	return &Replay{
		GameID:  initial.GameID,
		Initial: initial.Clone(),
		Steps:   make([]ReplayStep, 0),
	}
}

// Record appends an accepted action and the state it led to.
func (r *Replay) Record(action Action, next *state.GameState) error {
	data, err := EncodeAction(action)
	if err != nil {
		return err
	}
	sum, err := ComputeChecksum(next)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps = append(r.Steps, ReplayStep{Action: data, Checksum: sum.Hash})
	return nil
}

// Start rewinds playback to the beginning.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the next step and advances, or false at the end.
func (r *Replay) Next() (ReplayStep, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Steps) {
		step := r.Steps[r.CurrentIndex]
		r.CurrentIndex++
		return step, true
	}
	return ReplayStep{}, false
}

// Previous steps back and returns that step, or false at the start.
func (r *Replay) Previous() (ReplayStep, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Steps[r.CurrentIndex], true
	}
	return ReplayStep{}, false
}

// Size returns the number of recorded steps.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Steps)
}

// SaveToFile writes the replay as <directory>/<game id>.replay, gzipped.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.GameID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)
	metadata := replayMetadata{
		GameID:    r.GameID,
		Timestamp: time.Now(),
		Version:   1,
		StepCount: len(r.Steps),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	initial, err := MarshalState(r.Initial)
	if err != nil {
		return err
	}
	if err := encoder.Encode(initial); err != nil {
		return fmt.Errorf("failed to encode initial state: %w", err)
	}
	for i, step := range r.Steps {
		if err := encoder.Encode(step); err != nil {
			return fmt.Errorf("failed to encode step %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != 1 {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	var initialData []byte
	if err := decoder.Decode(&initialData); err != nil {
		return nil, fmt.Errorf("failed to decode initial state: %w", err)
	}
	initial, err := UnmarshalState(initialData)
	if err != nil {
		return nil, err
	}

	replay := &Replay{GameID: metadata.GameID, Initial: initial, Steps: make([]ReplayStep, 0, metadata.StepCount)}
	for i := 0; i < metadata.StepCount; i++ {
		var step ReplayStep
		if err := decoder.Decode(&step); err != nil {
			return nil, fmt.Errorf("failed to decode step %d: %w", i, err)
		}
		replay.Steps = append(replay.Steps, step)
	}
	return replay, nil
}

type replayMetadata struct {
	GameID    string
	Timestamp time.Time
	Version   int
	StepCount int
}

// Verify replays r from its initial state and checks every step against
// its recorded checksum. It returns the final state.
func (e *Engine) Verify(r *Replay) (*state.GameState, error) {
	r.mu.RLock()
	steps := append([]ReplayStep(nil), r.Steps...)
	current := r.Initial.Clone()
	r.mu.RUnlock()

	for i, step := range steps {
		action, err := DecodeAction(step.Action)
		if err != nil {
			return nil, fmt.Errorf("replay %s step %d: %w", r.GameID, i, err)
		}
		res := e.ProcessAction(current, action)
		if !res.IsValid {
			return nil, fmt.Errorf("replay %s step %d: action rejected: %s", r.GameID, i, res.ErrorMessage)
		}
		sum, err := ComputeChecksum(res.NewState)
		if err != nil {
			return nil, err
		}
		if sum.Hash != step.Checksum {
			return nil, fmt.Errorf("replay %s step %d: checksum mismatch", r.GameID, i)
		}
		current = res.NewState
	}
	return current, nil
}

// ReplayRecorder keeps in-progress replays for the games a manager runs.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder that saves finished replays under
// saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins a replay from the game's initial state.
func (rr *ReplayRecorder) StartRecording(initial *state.GameState) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[initial.GameID] = NewReplay(initial)
	rr.logger.Info("started replay recording", zap.String("game_id", initial.GameID))
}

// Record appends an accepted action to the game's replay, if one is being
// recorded.
func (rr *ReplayRecorder) Record(gameID string, action Action, next *state.GameState) {
	rr.mu.RLock()
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	if err := replay.Record(action, next); err != nil {
		rr.logger.Warn("failed to record replay step", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	rr.logger.Debug("recorded replay step",
		zap.String("game_id", gameID),
		zap.Int("step_count", replay.Size()),
	)
}

// GetReplay returns the in-memory replay for a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// SaveReplay writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(gameID string) error {
	rr.mu.Lock()
	replay, exists := rr.replays[gameID]
	if !exists {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for game %s", gameID)
	}
	delete(rr.replays, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}
	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("step_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// LoadReplay reads a saved replay.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	return LoadReplayFromFile(rr.saveDir, gameID)
}

// IsRecording reports whether a replay is open for gameID.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	_, ok := rr.replays[gameID]
	return ok
}
