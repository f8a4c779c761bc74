package state

// GridSize returns the board width and height for a player count.
// Two-player games use a 9x10 board; more players get more room.
func GridSize(playerCount int) (width, height int) {
	switch {
	case playerCount <= 2:
		return 9, 10
	case playerCount == 3:
		return 11, 11
	default:
		return 12, 12
	}
}

// homeOffsets are the HOME cells relative to the board centre, by seat.
var homeOffsets = []Position{
	{-1, 0},
	{1, 0},
	{0, -1},
	{0, 1},
}

// MaxSeats is the number of HOME anchors the board layout supports.
const MaxSeats = 4

// HomePositions returns where each seat's HOME is placed for a board of
// the given size. The centre cell itself is left open between them.
func HomePositions(width, height, playerCount int) []Position {
	if playerCount > len(homeOffsets) {
		playerCount = len(homeOffsets)
	}
	cx, cy := width/2, height/2
	out := make([]Position, playerCount)
	for i := 0; i < playerCount; i++ {
		out[i] = Position{X: cx + homeOffsets[i].X, Y: cy + homeOffsets[i].Y}
	}
	return out
}
