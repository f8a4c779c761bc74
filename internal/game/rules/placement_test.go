package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomasters/biomasters-server-go/internal/game/cards"
	"github.com/biomasters/biomasters-server-go/internal/game/modifiers"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
	"github.com/biomasters/biomasters-server-go/internal/testkit"
)

type board struct {
	t      *testing.T
	s      *state.GameState
	tables *cards.Tables
	pv     *PlacementValidator
}

// newBoard returns a two-player 9x10 game in the action sub-phase with
// both HOMEs placed: alice at (3,5), bob at (5,5).
func newBoard(t *testing.T) *board {
	t.Helper()
	tables := testkit.Tables(t)
	s := &state.GameState{
		GameID: "rules-test",
		Players: []*state.Player{
			{ID: "alice", Energy: 3, ActionsRemaining: 3},
			{ID: "bob", Energy: 3, ActionsRemaining: 3},
		},
		Phase:     state.PhasePlaying,
		TurnPhase: state.TurnAction,
		Grid:      map[state.Position]*state.CardInstance{},
		Settings:  state.DefaultSettings(2),
	}
	homes := state.HomePositions(s.Settings.GridWidth, s.Settings.GridHeight, 2)
	for i, p := range s.Players {
		home := state.NewInstance(state.CardRef{InstanceID: "home-" + p.ID, CardID: testkit.Home}, p.ID, homes[i])
		home.IsHome = true
		s.Grid[homes[i]] = home
	}
	return &board{t: t, s: s, tables: tables, pv: NewPlacementValidator(tables)}
}

func (b *board) put(id string, cardID int, owner string, pos state.Position) *state.CardInstance {
	inst := state.NewInstance(state.CardRef{InstanceID: id, CardID: cardID}, owner, pos)
	b.s.Grid[pos] = inst
	return inst
}

func (b *board) request(cardID int, pos state.Position) PlacementRequest {
	def, ok := b.tables.Card(cardID)
	require.True(b.t, ok, "card %d", cardID)
	return PlacementRequest{Card: def, Position: pos, PlayerID: "alice"}
}

func (b *board) validate(cardID int, pos state.Position) (Payment, error) {
	return b.pv.Validate(b.s, b.request(cardID, pos))
}

func requireReason(t *testing.T, err error, reason Reason) *Violation {
	t.Helper()
	require.Error(t, err)
	v := AsViolation(err)
	require.Equal(t, reason, v.Reason, "message: %s", v.Message)
	return v
}

func TestPlacementBoundsAndOccupancy(t *testing.T) {
	b := newBoard(t)

	_, err := b.validate(testkit.OakTree, state.Pos(-1, 0))
	v := requireReason(t, err, ReasonInvalidPosition)
	assert.Equal(t, "Invalid position", v.Message)

	_, err = b.validate(testkit.OakTree, state.Pos(9, 5))
	requireReason(t, err, ReasonInvalidPosition)

	_, err = b.validate(testkit.OakTree, state.Pos(3, 5))
	v = requireReason(t, err, ReasonPositionOccupied)
	assert.Equal(t, "Position occupied", v.Message)
}

func TestPlacementRequiresAdjacency(t *testing.T) {
	b := newBoard(t)
	before := b.s.Clone()

	for _, pos := range []state.Position{state.Pos(0, 0), state.Pos(8, 9), state.Pos(4, 3), state.Pos(1, 5)} {
		_, err := b.validate(testkit.OakTree, pos)
		v := requireReason(t, err, ReasonAdjacency)
		assert.Equal(t, "Must be placed adjacent to existing cards or HOME", v.Message)
	}
	assert.Equal(t, before, b.s, "validation must not mutate state")
}

func TestPlacementProducerNextToHome(t *testing.T) {
	b := newBoard(t)

	pay, err := b.validate(testkit.OakTree, state.Pos(2, 5))
	require.NoError(t, err)
	assert.Equal(t, 0, pay.Energy)
	assert.Empty(t, pay.Exhaust)

	// The centre cell borders both HOMEs.
	_, err = b.validate(testkit.OakTree, state.Pos(4, 5))
	require.NoError(t, err)
}

func TestPlacementHomeCardRejected(t *testing.T) {
	b := newBoard(t)
	_, err := b.validate(testkit.Home, state.Pos(2, 5))
	requireReason(t, err, ReasonInvalidAction)
}

func TestPlacementConsumerNeedsPreyLevel(t *testing.T) {
	b := newBoard(t)

	_, err := b.validate(testkit.FieldRabbit, state.Pos(2, 5))
	v := requireReason(t, err, ReasonTrophicConnection)
	assert.Contains(t, v.Message, "trophic level")

	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	pay, err := b.validate(testkit.FieldRabbit, state.Pos(1, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, pay.Energy)
}

func TestPlacementConsumerNextToConsumerOnly(t *testing.T) {
	b := newBoard(t)
	b.put("rabbit", testkit.FieldRabbit, "alice", state.Pos(2, 5))

	_, err := b.validate(testkit.FieldRabbit, state.Pos(1, 5))
	v := requireReason(t, err, ReasonTrophicConnection)
	assert.Contains(t, v.Message, "trophic level")

	// A carnivore one level up is happy with the rabbit.
	_, err = b.validate(testkit.RedFox, state.Pos(1, 5))
	require.NoError(t, err)
}

func TestPlacementDetritusIsNotPrey(t *testing.T) {
	b := newBoard(t)
	oak := b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	oak.MarkDetritus()

	_, err := b.validate(testkit.FieldRabbit, state.Pos(1, 5))
	requireReason(t, err, ReasonTrophicConnection)
}

func TestPlacementTrophicShiftCounts(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	rabbit := b.put("rabbit", testkit.FieldRabbit, "alice", state.Pos(1, 5))

	// Red Fox (3) next to the rabbit (2) is fine until the rabbit is shifted.
	_, err := b.validate(testkit.RedFox, state.Pos(0, 5))
	require.NoError(t, err)

	rabbit.Modifiers = rabbit.Modifiers.Add(modifiers.New(modifiers.KindTrophicShift, 1, 0, "test"))
	_, err = b.validate(testkit.RedFox, state.Pos(0, 5))
	requireReason(t, err, ReasonTrophicConnection)
}

func TestPlacementDecomposers(t *testing.T) {
	b := newBoard(t)

	_, err := b.validate(testkit.MycenaFungus, state.Pos(2, 5))
	requireReason(t, err, ReasonTrophicConnection)

	oak := b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	oak.MarkDetritus()

	// Detritus alone does not feed a detritivore.
	_, err = b.validate(testkit.Earthworm, state.Pos(1, 5))
	requireReason(t, err, ReasonTrophicConnection)

	_, err = b.validate(testkit.MycenaFungus, state.Pos(2, 4))
	require.NoError(t, err)
	b.put("fungus", testkit.MycenaFungus, "alice", state.Pos(2, 4))

	_, err = b.validate(testkit.Earthworm, state.Pos(1, 4))
	require.NoError(t, err)
}

func TestPlacementChemoautotrophHomeBypass(t *testing.T) {
	b := newBoard(t)

	_, err := b.validate(testkit.VentBacteria, state.Pos(2, 5))
	require.NoError(t, err)

	b.s.Settings.ChemoautotrophHomeBypass = false
	_, err = b.validate(testkit.VentBacteria, state.Pos(2, 5))
	requireReason(t, err, ReasonTrophicConnection)
}

func TestPlacementChemoautotrophNextToDetritus(t *testing.T) {
	b := newBoard(t)
	b.s.Settings.ChemoautotrophHomeBypass = false
	kelp := b.put("kelp", testkit.KelpForest, "alice", state.Pos(2, 5))
	kelp.MarkDetritus()

	_, err := b.validate(testkit.VentBacteria, state.Pos(1, 5))
	require.NoError(t, err)
}

func TestPlacementOpportunistBypass(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))

	_, err := b.validate(testkit.RedTailedHawk, state.Pos(1, 5))
	require.NoError(t, err)

	// Without the keyword the gap is too wide.
	_, err = b.validate(testkit.GrayWolf, state.Pos(1, 5))
	requireReason(t, err, ReasonTrophicConnection)

	b.s.Settings.OpportunistBypass = false
	_, err = b.validate(testkit.RedTailedHawk, state.Pos(1, 5))
	requireReason(t, err, ReasonTrophicConnection)
}

func TestPlacementOmnivoreAcceptsProducer(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))

	_, err := b.validate(testkit.Raccoon, state.Pos(1, 5))
	require.NoError(t, err)
}

func TestPlacementDomainMismatch(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))

	_, err := b.validate(testkit.KelpForest, state.Pos(1, 5))
	requireReason(t, err, ReasonDomainMismatch)

	_, err = b.validate(testkit.Duckweed, state.Pos(1, 5))
	requireReason(t, err, ReasonDomainMismatch)

	// HOME borders every habitat.
	_, err = b.validate(testkit.KelpForest, state.Pos(3, 4))
	require.NoError(t, err)
}

func TestPlacementAttachments(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))

	_, err := b.validate(testkit.MycorrhizalFungi, state.Pos(2, 5))
	require.NoError(t, err)

	_, err = b.validate(testkit.AnemoneShrimp, state.Pos(2, 5))
	requireReason(t, err, ReasonDomainMismatch)

	_, err = b.validate(testkit.MycorrhizalFungi, state.Pos(1, 5))
	requireReason(t, err, ReasonInvalidTarget)

	_, err = b.validate(testkit.DeerTick, state.Pos(3, 5))
	requireReason(t, err, ReasonInvalidTarget)
}

func TestPlacementCost(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	b.s.Players[0].Energy = 0

	_, err := b.validate(testkit.FieldRabbit, state.Pos(1, 5))
	v := requireReason(t, err, ReasonInsufficientResources)
	assert.Contains(t, v.Message, "Insufficient resources")
}

func TestPlacementCostRequirements(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	b.put("rabbit", testkit.FieldRabbit, "alice", state.Pos(1, 5))
	fox := b.put("fox", testkit.RedFox, "alice", state.Pos(0, 5))

	pay, err := b.validate(testkit.GrayWolf, state.Pos(0, 4))
	require.NoError(t, err)
	assert.Equal(t, 2, pay.Energy)
	assert.Equal(t, []string{"fox"}, pay.Exhaust)

	fox.Exhausted = true
	_, err = b.validate(testkit.GrayWolf, state.Pos(0, 4))
	requireReason(t, err, ReasonInsufficientResources)

	fox.Exhausted = false
	fox.OwnerID = "bob"
	_, err = b.validate(testkit.GrayWolf, state.Pos(0, 4))
	requireReason(t, err, ReasonInsufficientResources)
}

func TestPlacementIgnoreAndSkipCost(t *testing.T) {
	b := newBoard(t)
	b.put("oak", testkit.OakTree, "alice", state.Pos(2, 5))
	b.put("rabbit", testkit.FieldRabbit, "alice", state.Pos(1, 5))
	b.s.Players[0].Energy = 0

	req := b.request(testkit.MonarchButterfly, state.Pos(1, 5))
	_, err := b.pv.Validate(b.s, req)
	requireReason(t, err, ReasonPositionOccupied)

	req.Ignore = "rabbit"
	_, err = b.pv.Validate(b.s, req)
	requireReason(t, err, ReasonInsufficientResources)

	req.SkipCost = true
	_, err = b.pv.Validate(b.s, req)
	require.NoError(t, err)
}

func TestPlacementUnknownPlayer(t *testing.T) {
	b := newBoard(t)
	req := b.request(testkit.OakTree, state.Pos(2, 5))
	req.PlayerID = "mallory"
	_, err := b.pv.Validate(b.s, req)
	requireReason(t, err, ReasonNotYourTurn)
}
