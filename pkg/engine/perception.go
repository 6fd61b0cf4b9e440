package engine

import (
	"sort"

	"github.com/saltmarsh-games/worldengine/pkg/session"
)

// Snapshot is the visibility-filtered view of a session handed to the
// narrator. It is the sole permitted narration input besides the turn's
// event list and must never include a hidden entity.
type Snapshot struct {
	Location   string     `json:"location"`
	Name       string     `json:"name"`
	Atmosphere string     `json:"atmosphere,omitempty"`
	Exits      []ExitView `json:"exits,omitempty"`
	Items      []ItemView `json:"items,omitempty"`
	NPCs       []NPCView  `json:"npcs,omitempty"`
	Details    []string   `json:"details,omitempty"`
	Inventory  []ItemView `json:"inventory,omitempty"`
	Affordances []string  `json:"affordances,omitempty"`
	Turns      int        `json:"turns"`
	Won        bool       `json:"won"`
}

// ExitView describes one visible exit. Destination is empty when the
// player has not been told what lies beyond; the narrator should then
// phrase it as unexplored.
type ExitView struct {
	Direction   string `json:"direction"`
	Destination string `json:"destination,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
}

// ItemView describes one visible item.
type ItemView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NPCView describes one present, visible NPC.
type NPCView struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Snapshot builds the perception snapshot for the session's current
// location. It is read-only: calling it never changes state, so the
// same state always yields the same snapshot.
func (r *Resolver) Snapshot(st *session.State) *Snapshot {
	loc := r.here(st)

	snap := &Snapshot{
		Location:   st.Location,
		Name:       loc.Name,
		Atmosphere: loc.Atmosphere,
		Turns:      st.Turns,
		Won:        st.Won,
	}

	for _, dir := range sortedExitKeys(loc.Exits) {
		ex := loc.Exits[dir]
		if ResolveExit(ex, st) == Hidden {
			continue
		}
		view := ExitView{Direction: dir, Locked: !st.MeetsRequirement(ex.Requires)}
		if ex.DestinationKnown {
			if dest, ok := r.w.GetLocation(ex.To); ok {
				view.Destination = dest.Name
			}
		}
		snap.Exits = append(snap.Exits, view)
	}

	for _, key := range sortedKeys(loc.Items) {
		it, visible := r.visibleItem(st, loc, key)
		if !visible {
			continue
		}
		desc := loc.Items[key].Description
		if desc == "" {
			desc = it.Scene
		}
		snap.Items = append(snap.Items, ItemView{Key: key, Name: it.Name, Description: desc})
	}
	for _, key := range st.Dropped[st.Location] {
		if it, ok := r.w.GetItem(key); ok {
			snap.Items = append(snap.Items, ItemView{Key: key, Name: it.Name, Description: it.Scene})
		}
	}

	for _, key := range sortedKeys(loc.NPCs) {
		n, ok := r.w.GetNPC(key)
		if !ok || !r.npcVisibleHere(st, loc, key, n) {
			continue
		}
		desc := loc.NPCs[key].Description
		if desc == "" {
			desc = n.Description
		}
		snap.NPCs = append(snap.NPCs, NPCView{Key: key, Name: n.Name, Description: desc})
	}

	// NPCs relocated into this location have no authored placement here.
	for key, n := range r.w.NPCs {
		if _, placed := loc.NPCs[key]; placed {
			continue
		}
		if NPCPresent(key, n, st, st.Location) {
			snap.NPCs = append(snap.NPCs, NPCView{Key: key, Name: n.Name, Description: n.Description})
		}
	}
	sort.Slice(snap.NPCs, func(i, j int) bool { return snap.NPCs[i].Key < snap.NPCs[j].Key })

	details := make([]string, 0, len(loc.Details))
	for key := range loc.Details {
		details = append(details, key)
	}
	sort.Strings(details)
	snap.Details = details

	for _, key := range st.Inventory {
		if it, ok := r.w.GetItem(key); ok {
			snap.Inventory = append(snap.Inventory, ItemView{Key: key, Name: it.Name, Description: it.Examine})
		}
	}

	snap.Affordances = r.affordances(st, snap)
	return snap
}

// affordances lists the verbs that could succeed right now, giving the
// narrator material for hinting without leaking hidden content.
func (r *Resolver) affordances(st *session.State, snap *Snapshot) []string {
	var verbs []string
	for _, ex := range snap.Exits {
		if !ex.Locked {
			verbs = append(verbs, "move")
			break
		}
	}
	for _, iv := range snap.Items {
		if it, ok := r.w.GetItem(iv.Key); ok && it.Portable && !st.Holding(iv.Key) {
			verbs = append(verbs, "take")
			break
		}
	}
	for _, iv := range snap.Items {
		if it, ok := r.w.GetItem(iv.Key); ok && it.Container {
			if st.ContainerOpen(iv.Key, it) {
				verbs = append(verbs, "close")
			} else {
				verbs = append(verbs, "open")
			}
			break
		}
	}
	if len(snap.Details) > 0 || len(snap.Items) > 0 {
		verbs = append(verbs, "examine")
	}
	if len(snap.NPCs) > 0 {
		verbs = append(verbs, "talk")
	}
	if len(snap.Inventory) > 0 {
		verbs = append(verbs, "drop")
	}
	return verbs
}
