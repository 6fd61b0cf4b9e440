package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// State is one player's mutable runtime state. It is mutated only by
// the action resolver and is sufficient to resume a session without
// replaying history.
type State struct {
	ID        uuid.UUID       `json:"id"`
	World     string          `json:"world"`              // World key this session plays
	Location  string          `json:"location"`           // Current location key
	Inventory []string        `json:"inventory,omitempty"`
	Flags     map[string]bool `json:"flags,omitempty"`      // Named boolean facts; absent reads false
	Trust     map[string]int  `json:"trust,omitempty"`      // NPC key → trust counter
	Discovered map[string]bool `json:"discovered,omitempty"` // Entity keys revealed at least once
	Open      map[string]bool `json:"open,omitempty"`       // Container item key → open state overlay
	Gone      map[string]bool `json:"gone,omitempty"`       // NPC keys permanently removed this session
	Taken     map[string]bool `json:"taken,omitempty"`      // "location/item" placements picked up
	Dropped   map[string][]string `json:"dropped,omitempty"` // Location key → items dropped there
	Turns     int             `json:"turns"`
	Won       bool            `json:"won"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New creates session state at the world's starting location with its
// starting inventory.
func New(worldKey string, w *world.World) *State {
	now := time.Now().UTC()
	st := &State{
		ID:         uuid.New(),
		World:      worldKey,
		Location:   w.Start,
		Inventory:  make([]string, 0, len(w.StartInventory)),
		Flags:      make(map[string]bool),
		Trust:      make(map[string]int),
		Discovered: make(map[string]bool),
		Open:       make(map[string]bool),
		Gone:       make(map[string]bool),
		Taken:      make(map[string]bool),
		Dropped:    make(map[string][]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	st.Inventory = append(st.Inventory, w.StartInventory...)
	return st
}

// Clone returns a deep copy. The resolver applies each turn to a clone
// so that a failed turn leaves the original state untouched.
func (s *State) Clone() *State {
	c := *s
	c.Inventory = append([]string(nil), s.Inventory...)
	c.Flags = cloneBoolMap(s.Flags)
	c.Trust = make(map[string]int, len(s.Trust))
	for k, v := range s.Trust {
		c.Trust[k] = v
	}
	c.Discovered = cloneBoolMap(s.Discovered)
	c.Open = cloneBoolMap(s.Open)
	c.Gone = cloneBoolMap(s.Gone)
	c.Taken = cloneBoolMap(s.Taken)
	c.Dropped = make(map[string][]string, len(s.Dropped))
	for k, v := range s.Dropped {
		c.Dropped[k] = append([]string(nil), v...)
	}
	return &c
}

// PlacementKey names one placement of an item in a location, used to
// track which authored placements have been picked up.
func PlacementKey(location, item string) string {
	return location + "/" + item
}

// TakenFrom reports whether the item's placement in the location has
// been picked up.
func (s *State) TakenFrom(location, item string) bool {
	return s.Taken[PlacementKey(location, item)]
}

// MarkTaken records that the item's placement in the location has been
// picked up.
func (s *State) MarkTaken(location, item string) {
	if s.Taken == nil {
		s.Taken = make(map[string]bool)
	}
	s.Taken[PlacementKey(location, item)] = true
}

// DropAt places an item on the floor of a location. If the item was
// originally placed in this location, the authored placement is
// restored instead of adding a floor copy.
func (s *State) DropAt(location, item string, authored bool) {
	if authored {
		delete(s.Taken, PlacementKey(location, item))
		return
	}
	if s.Dropped == nil {
		s.Dropped = make(map[string][]string)
	}
	for _, it := range s.Dropped[location] {
		if it == item {
			return
		}
	}
	s.Dropped[location] = append(s.Dropped[location], item)
}

// PickupDropped removes a previously dropped item from a location's
// floor. Reports whether it was there.
func (s *State) PickupDropped(location, item string) bool {
	items := s.Dropped[location]
	for i, it := range items {
		if it == item {
			s.Dropped[location] = append(items[:i], items[i+1:]...)
			if len(s.Dropped[location]) == 0 {
				delete(s.Dropped, location)
			}
			return true
		}
	}
	return false
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Flag reads a named flag. Unset flags are simply false; a gate on a
// flag that nothing sets degrades to permanently closed rather than
// erroring.
func (s *State) Flag(name string) bool {
	return s.Flags[name]
}

// SetFlag sets a named flag true. Reports whether the value changed.
func (s *State) SetFlag(name string) bool {
	if s.Flags == nil {
		s.Flags = make(map[string]bool)
	}
	if s.Flags[name] {
		return false
	}
	s.Flags[name] = true
	return true
}

// Holding reports whether the item is in inventory.
func (s *State) Holding(item string) bool {
	for _, it := range s.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// AddItem appends an item to inventory if not already held.
func (s *State) AddItem(item string) {
	if !s.Holding(item) {
		s.Inventory = append(s.Inventory, item)
	}
}

// RemoveItem drops an item from inventory. Reports whether it was held.
func (s *State) RemoveItem(item string) bool {
	for i, it := range s.Inventory {
		if it == item {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// ContainerOpen reports the effective open state of a container item,
// falling back to the authored initial state when the session has
// never touched it.
func (s *State) ContainerOpen(itemKey string, it *world.Item) bool {
	if v, ok := s.Open[itemKey]; ok {
		return v
	}
	return it.Open
}

// AdjustTrust moves an NPC's trust counter by delta and returns the
// new value.
func (s *State) AdjustTrust(npc string, delta int) int {
	if s.Trust == nil {
		s.Trust = make(map[string]int)
	}
	s.Trust[npc] += delta
	return s.Trust[npc]
}

// MeetsRequirement reports whether a location or exit requirement is
// satisfied by the current flags and inventory.
func (s *State) MeetsRequirement(req *world.Requirement) bool {
	if req == nil {
		return true
	}
	if req.Flag != "" && !s.Flag(req.Flag) {
		return false
	}
	if req.Item != "" && !s.Holding(req.Item) {
		return false
	}
	return true
}
