package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Position is a cell on the board. X grows to the right, Y grows down.
// It encodes as the text "x,y" in JSON, both as a value and as a map key.
type Position struct {
	X int
	Y int
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// MarshalText lets Position key a JSON object.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the "x,y" form produced by MarshalText.
func (p *Position) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid position %q", text)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", text, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", text, err)
	}
	p.X, p.Y = x, y
	return nil
}

// UnmarshalJSON accepts both the "x,y" text form and {"x":1,"y":2}.
func (p *Position) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		return p.UnmarshalText([]byte(text))
	}
	var xy struct {
		X *int `json:"x"`
		Y *int `json:"y"`
	}
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("invalid position %s: %w", data, err)
	}
	if xy.X == nil || xy.Y == nil {
		return fmt.Errorf("invalid position %s: x and y are required", data)
	}
	p.X, p.Y = *xy.X, *xy.Y
	return nil
}

// Neighbors returns the four orthogonal cells, in up/right/down/left order,
// without any bounds check.
func (p Position) Neighbors() [4]Position {
	return [4]Position{
		{p.X, p.Y - 1},
		{p.X + 1, p.Y},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y},
	}
}

// Adjacent reports whether q shares an edge with p.
func (p Position) Adjacent(q Position) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}

// Less orders positions row-major; used wherever iteration order matters.
func (p Position) Less(q Position) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}
