package state

// Player is one seat in the game.
type Player struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Hand             []CardRef `json:"hand"`
	Deck             []CardRef `json:"deck"`
	ScorePile        []CardRef `json:"score_pile"`
	Discard          []CardRef `json:"discard"`
	Energy           int       `json:"energy"`
	VictoryPoints    int       `json:"victory_points"`
	Ready            bool      `json:"ready"`
	ActionsRemaining int       `json:"actions_remaining"`
	Forfeited        bool      `json:"forfeited"`
}

// HandIndex returns the index of instanceID in the hand, or -1.
func (p *Player) HandIndex(instanceID string) int {
	for i, ref := range p.Hand {
		if ref.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

// TakeFromHand removes and returns the hand card with instanceID.
func (p *Player) TakeFromHand(instanceID string) (CardRef, bool) {
	i := p.HandIndex(instanceID)
	if i < 0 {
		return CardRef{}, false
	}
	ref := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return ref, true
}

// DrawTop moves the top deck card into the hand.
func (p *Player) DrawTop() (CardRef, bool) {
	if len(p.Deck) == 0 {
		return CardRef{}, false
	}
	ref := p.Deck[0]
	p.Deck = p.Deck[1:]
	p.Hand = append(p.Hand, ref)
	return ref, true
}

// AddToScorePile keeps the pile sorted by instance id; it is a set.
func (p *Player) AddToScorePile(ref CardRef) {
	i := 0
	for i < len(p.ScorePile) && p.ScorePile[i].InstanceID < ref.InstanceID {
		i++
	}
	p.ScorePile = append(p.ScorePile, CardRef{})
	copy(p.ScorePile[i+1:], p.ScorePile[i:])
	p.ScorePile[i] = ref
}

func (p *Player) clone() *Player {
	out := *p
	out.Hand = cloneRefs(p.Hand)
	out.Deck = cloneRefs(p.Deck)
	out.ScorePile = cloneRefs(p.ScorePile)
	out.Discard = cloneRefs(p.Discard)
	return &out
}

func cloneRefs(refs []CardRef) []CardRef {
	if refs == nil {
		return nil
	}
	out := make([]CardRef, len(refs))
	copy(out, refs)
	return out
}
