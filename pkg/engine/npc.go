package engine

import (
	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// ResolveNPCLocation determines which location an NPC is nominally in
// for the current session state. Relocation rules are scanned left to
// right and the last rule whose flag is currently true wins; if none
// match, the NPC's default location applies. A matching rule with a
// nil destination removes the NPC: the second return is false. The
// resolver records such removals permanently after each turn, so a
// removed NPC stays gone even if later rules could re-place it.
//
// Rules are evaluated fresh every turn, never cached. This function is
// read-only.
func ResolveNPCLocation(key string, n *world.NPC, st *session.State) (string, bool) {
	if st.Gone[key] {
		return "", false
	}

	loc := n.Home()
	present := true
	for _, rule := range n.LocationChanges {
		if !st.Flag(rule.Flag) {
			continue
		}
		if rule.MoveTo == nil {
			loc = ""
			present = false
		} else {
			loc = *rule.MoveTo
			present = true
		}
	}

	if !present {
		return "", false
	}
	return loc, true
}

// meetsPredicates reports whether every appears_when clause holds.
// The conjunction over an empty set is true.
func meetsPredicates(key string, preds []world.Predicate, st *session.State) bool {
	for _, p := range preds {
		if p.FlagSet != "" && !st.Flag(p.FlagSet) {
			return false
		}
		if p.FlagUnset != "" && st.Flag(p.FlagUnset) {
			return false
		}
		if p.MinTrust != nil && st.Trust[key] < *p.MinTrust {
			return false
		}
	}
	return true
}

// NPCPresent reports whether the NPC is rendered present at the given
// location: its relocation rules must resolve there, and every
// appears_when predicate must hold. A permanently removed NPC is never
// present regardless of appears_when.
func NPCPresent(key string, n *world.NPC, st *session.State, at string) bool {
	loc, ok := ResolveNPCLocation(key, n, st)
	if !ok || loc != at {
		return false
	}
	return meetsPredicates(key, n.AppearsWhen, st)
}
