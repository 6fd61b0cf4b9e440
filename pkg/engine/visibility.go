package engine

import (
	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// Visibility is the outcome of resolving an entity's placement against
// session state.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// resolve is the single visibility rule: an entity is visible iff its
// placement is not hidden, or it is hidden and the find flag is set.
// An unset find flag reads false, so a gate nothing sets degrades to
// permanently hidden rather than erroring.
func resolve(hidden bool, findFlag string, st *session.State) Visibility {
	if !hidden {
		return Visible
	}
	if findFlag != "" && st.Flag(findFlag) {
		return Visible
	}
	return Hidden
}

// ResolvePlacement resolves visibility for an item or NPC placement.
func ResolvePlacement(p world.Placement, st *session.State) Visibility {
	return resolve(p.Hidden, p.FindFlag, st)
}

// ResolveExit resolves visibility for an exit. DestinationKnown plays
// no part here; it only shapes narration phrasing.
func ResolveExit(e *world.Exit, st *session.State) Visibility {
	return resolve(e.Hidden, e.FindFlag, st)
}

// Observe resolves visibility and records first discovery. The second
// return is true exactly once per session per entity: the first time a
// hidden entity is seen visible. Entities that were never hidden do
// not fire a reveal.
func Observe(key string, hidden bool, findFlag string, st *session.State) (Visibility, bool) {
	v := resolve(hidden, findFlag, st)
	if v != Visible || !hidden {
		return v, false
	}
	if st.Discovered[key] {
		return v, false
	}
	if st.Discovered == nil {
		st.Discovered = make(map[string]bool)
	}
	st.Discovered[key] = true
	return v, true
}
