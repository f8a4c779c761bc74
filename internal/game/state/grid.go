package state

// The zone operations below do not check game rules. Callers validate
// first and only then mutate; every operation is a no-op returning false
// when the instance cannot be found.

// InBounds reports whether p lies on the board.
func (s *GameState) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Settings.GridWidth && p.Y < s.Settings.GridHeight
}

// At returns the primary instance at p.
func (s *GameState) At(p Position) (*CardInstance, bool) {
	inst, ok := s.Grid[p]
	return inst, ok && inst != nil
}

// Find locates an instance on the grid. For attachments host is the
// instance it is tucked under; for primaries host is nil.
func (s *GameState) Find(instanceID string) (inst *CardInstance, host *CardInstance, ok bool) {
	for _, pos := range s.Positions() {
		primary := s.Grid[pos]
		if primary.InstanceID == instanceID {
			return primary, nil, true
		}
		if a, found := primary.Attachment(instanceID); found {
			return a, primary, true
		}
	}
	return nil, nil, false
}

// Neighbors returns the in-bounds occupied cells around p, in
// up/right/down/left order.
func (s *GameState) Neighbors(p Position) []*CardInstance {
	var out []*CardInstance
	for _, n := range p.Neighbors() {
		if !s.InBounds(n) {
			continue
		}
		if inst, ok := s.At(n); ok {
			out = append(out, inst)
		}
	}
	return out
}

// Home returns the HOME instance of playerID.
func (s *GameState) Home(playerID string) (*CardInstance, bool) {
	for _, pos := range s.Positions() {
		inst := s.Grid[pos]
		if inst.IsHome && inst.OwnerID == playerID {
			return inst, true
		}
	}
	return nil, false
}

// Instances returns every primary and attached instance in row-major
// order, hosts before their attachments.
func (s *GameState) Instances() []*CardInstance {
	var out []*CardInstance
	for _, pos := range s.Positions() {
		inst := s.Grid[pos]
		out = append(out, inst)
		out = append(out, inst.Attachments...)
	}
	return out
}

// PlaceFromHand moves a hand card of playerID onto the empty cell pos.
func (s *GameState) PlaceFromHand(playerID, instanceID string, pos Position) (*CardInstance, bool) {
	p, ok := s.Player(playerID)
	if !ok {
		return nil, false
	}
	if _, occupied := s.At(pos); occupied {
		return nil, false
	}
	ref, ok := p.TakeFromHand(instanceID)
	if !ok {
		return nil, false
	}
	inst := NewInstance(ref, playerID, pos)
	s.Grid[pos] = inst
	return inst, true
}

// AttachFromHand tucks a hand card of playerID under the primary at pos.
func (s *GameState) AttachFromHand(playerID, instanceID string, pos Position) (*CardInstance, bool) {
	p, ok := s.Player(playerID)
	if !ok {
		return nil, false
	}
	host, occupied := s.At(pos)
	if !occupied {
		return nil, false
	}
	ref, ok := p.TakeFromHand(instanceID)
	if !ok {
		return nil, false
	}
	inst := NewInstance(ref, playerID, pos)
	host.Attachments = append(host.Attachments, inst)
	return inst, true
}

// Attach tucks the living primary instanceID under the living primary
// hostID. Primaries that carry attachments of their own cannot be
// attached.
func (s *GameState) Attach(instanceID, hostID string) (*CardInstance, bool) {
	if instanceID == hostID {
		return nil, false
	}
	host, hostOf, ok := s.Find(hostID)
	if !ok || hostOf != nil || !host.IsLiving() {
		return nil, false
	}
	inst, instHost, ok := s.Find(instanceID)
	if !ok || instHost != nil || !inst.IsLiving() || len(inst.Attachments) > 0 {
		return nil, false
	}
	delete(s.Grid, *inst.Position)
	pos := *host.Position
	inst.Position = &pos
	host.Attachments = append(host.Attachments, inst)
	return inst, true
}

// Detach pulls an attachment off its host into its owner's discard pile.
func (s *GameState) Detach(instanceID string) (*CardInstance, bool) {
	inst, host, ok := s.Find(instanceID)
	if !ok || host == nil {
		return nil, false
	}
	host.Attachments = removeInstance(host.Attachments, instanceID)
	inst.Position = nil
	s.discard(inst)
	return inst, true
}

// Destroy turns a primary into a detritus tile in place. Attachments go to
// their owners' discard piles; a destroyed attachment is simply discarded.
func (s *GameState) Destroy(instanceID string) bool {
	inst, host, ok := s.Find(instanceID)
	if !ok || inst.IsHome {
		return false
	}
	if host != nil {
		_, ok = s.Detach(instanceID)
		return ok
	}
	if inst.IsDetritus {
		return false
	}
	for _, a := range inst.Attachments {
		a.Position = nil
		s.discard(a)
	}
	inst.Attachments = nil
	inst.MarkDetritus()
	s.Detritus = append(s.Detritus, inst.InstanceID)
	return true
}

// Remove takes an instance off the grid entirely and returns it. A primary
// keeps its attachments in the returned value; callers route them.
func (s *GameState) Remove(instanceID string) (*CardInstance, bool) {
	inst, host, ok := s.Find(instanceID)
	if !ok || inst.IsHome {
		return nil, false
	}
	if host != nil {
		host.Attachments = removeInstance(host.Attachments, instanceID)
		inst.Position = nil
		return inst, true
	}
	delete(s.Grid, *inst.Position)
	inst.Position = nil
	s.Detritus = removeString(s.Detritus, instanceID)
	return inst, true
}

// RemoveFromGame takes an instance off the grid for good. Attachments of a
// removed primary go to their owners' discard piles.
func (s *GameState) RemoveFromGame(instanceID string) bool {
	inst, ok := s.Remove(instanceID)
	if !ok {
		return false
	}
	s.discardAttachments(inst)
	return true
}

// MoveToScorePile scores an instance for playerID. Attachments of a
// scored primary are discarded.
func (s *GameState) MoveToScorePile(instanceID, playerID string) bool {
	p, ok := s.Player(playerID)
	if !ok {
		return false
	}
	inst, ok := s.Remove(instanceID)
	if !ok {
		return false
	}
	s.discardAttachments(inst)
	p.AddToScorePile(inst.Ref())
	return true
}

// MoveToHand returns an instance to its owner's hand. When the hand is at
// maxHand the card is discarded instead; the bool result reports whether
// it reached the hand.
func (s *GameState) MoveToHand(instanceID string, maxHand int) (toHand bool, ok bool) {
	inst, ok := s.Remove(instanceID)
	if !ok {
		return false, false
	}
	s.discardAttachments(inst)
	owner, found := s.Player(inst.OwnerID)
	if !found {
		return false, true
	}
	if maxHand > 0 && len(owner.Hand) >= maxHand {
		owner.Discard = append(owner.Discard, inst.Ref())
		return false, true
	}
	owner.Hand = append(owner.Hand, inst.Ref())
	return true, true
}

// MoveToDiscard removes an instance to its owner's discard pile.
func (s *GameState) MoveToDiscard(instanceID string) bool {
	inst, ok := s.Remove(instanceID)
	if !ok {
		return false
	}
	s.discardAttachments(inst)
	s.discard(inst)
	return true
}

// Relocate moves a primary, attachments included, to the empty cell to.
func (s *GameState) Relocate(instanceID string, to Position) bool {
	inst, host, ok := s.Find(instanceID)
	if !ok || host != nil || inst.IsHome {
		return false
	}
	if _, occupied := s.At(to); occupied {
		return false
	}
	delete(s.Grid, *inst.Position)
	p := to
	inst.Position = &p
	for _, a := range inst.Attachments {
		ap := to
		a.Position = &ap
	}
	s.Grid[to] = inst
	return true
}

// Replace swaps the primary with instanceID for a hand card of its owner.
// The new instance inherits position, attachments and exhaustion; the old
// card goes to the discard pile.
func (s *GameState) Replace(instanceID, handInstanceID string) (*CardInstance, bool) {
	old, host, ok := s.Find(instanceID)
	if !ok || host != nil || !old.IsLiving() {
		return nil, false
	}
	owner, ok := s.Player(old.OwnerID)
	if !ok {
		return nil, false
	}
	ref, ok := owner.TakeFromHand(handInstanceID)
	if !ok {
		return nil, false
	}
	pos := *old.Position
	next := NewInstance(ref, old.OwnerID, pos)
	next.Exhausted = old.Exhausted
	next.Attachments = old.Attachments
	s.Grid[pos] = next
	old.Attachments = nil
	old.Position = nil
	owner.Discard = append(owner.Discard, old.Ref())
	return next, true
}

func (s *GameState) discard(inst *CardInstance) {
	if owner, ok := s.Player(inst.OwnerID); ok {
		owner.Discard = append(owner.Discard, inst.Ref())
	}
}

func (s *GameState) discardAttachments(inst *CardInstance) {
	for _, a := range inst.Attachments {
		a.Position = nil
		s.discard(a)
	}
	inst.Attachments = nil
}

func removeInstance(list []*CardInstance, id string) []*CardInstance {
	out := list[:0:0]
	for _, inst := range list {
		if inst.InstanceID != id {
			out = append(out, inst)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
