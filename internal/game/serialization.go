package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// checksumVersion changes whenever the canonical form below changes.
const checksumVersion = 1

// StateChecksum is a digest of a game state. Two states with equal
// checksums are the same game position, so clients and replays can detect
// divergence without shipping whole states.
type StateChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// ComputeChecksum hashes the canonical representation of s.
func ComputeChecksum(s *state.GameState) (*StateChecksum, error) {
	if s == nil {
		return nil, fmt.Errorf("compute checksum: nil state")
	}
	hash := sha256.New()
	if _, err := hash.Write(canonicalState(s)); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &StateChecksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: checksumVersion,
	}, nil
}

// canonicalState renders s independent of map iteration order.
// Metadata is excluded; it carries host annotations, not game position.
func canonicalState(s *state.GameState) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%s|%s|%d|%d|%s|%s|%d\n",
		s.GameID,
		s.Phase,
		s.TurnPhase,
		s.TurnNumber,
		s.CurrentPlayerIndex,
		s.Winner,
		s.EndReason,
		s.FinalTurnsRemaining,
	)

	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d|%d|%t|%t\n",
			p.ID,
			p.Name,
			p.Energy,
			p.VictoryPoints,
			p.ActionsRemaining,
			p.Ready,
			p.Forfeited,
		)
		writeZone(&buf, "HAND", p.Hand)
		writeZone(&buf, "DECK", p.Deck)
		writeZone(&buf, "SCORE", p.ScorePile)
		writeZone(&buf, "DISCARD", p.Discard)
	}

	for _, pos := range s.Positions() {
		writeInstance(&buf, "CELL:"+pos.String(), s.Grid[pos])
	}

	detritus := append([]string(nil), s.Detritus...)
	sort.Strings(detritus)
	for _, id := range detritus {
		fmt.Fprintf(&buf, "DETRITUS:%s\n", id)
	}

	ids := make([]string, 0, len(s.FinalScores))
	for id := range s.FinalScores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(&buf, "FINAL:%s|%d\n", id, s.FinalScores[id])
	}

	return buf.Bytes()
}

func writeZone(buf *bytes.Buffer, zone string, refs []state.CardRef) {
	for _, ref := range refs {
		fmt.Fprintf(buf, "  %s:%s|%d\n", zone, ref.InstanceID, ref.CardID)
	}
}

func writeInstance(buf *bytes.Buffer, prefix string, inst *state.CardInstance) {
	fmt.Fprintf(buf, "%s|%s|%d|%s|%t|%t|%t\n",
		prefix,
		inst.InstanceID,
		inst.CardID,
		inst.OwnerID,
		inst.Exhausted,
		inst.IsHome,
		inst.IsDetritus,
	)
	for _, m := range inst.Modifiers {
		fmt.Fprintf(buf, "  MOD:%s|%d|%d|%s\n", m.Kind, m.Magnitude, m.Duration, m.SourceID)
	}
	for _, a := range inst.Attachments {
		writeInstance(buf, "  ATTACH", a)
	}
}

// MarshalState encodes a state for storage or transport.
func MarshalState(s *state.GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal game state: %w", err)
	}
	return data, nil
}

// UnmarshalState decodes a state produced by MarshalState.
func UnmarshalState(data []byte) (*state.GameState, error) {
	var s state.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal game state: %w", err)
	}
	s.Prune()
	return &s, nil
}
