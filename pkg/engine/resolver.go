package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// Resolver is the turn pipeline: intent → validation → state mutation
// → event emission. It is a pure function of (world, state, intent);
// the world is never mutated and a rejected turn leaves the state
// byte-identical.
type Resolver struct {
	w   *world.World
	log *slog.Logger
}

// NewResolver creates a resolver over an immutable world.
func NewResolver(w *world.World, log *slog.Logger) *Resolver {
	return &Resolver{w: w, log: log}
}

// Resolve runs one turn. On success the returned state is a new value
// with all of the turn's mutations applied atomically; the input state
// is never modified. On fault the input state is returned unchanged
// with a nil event list.
func (r *Resolver) Resolve(st *session.State, in Intent) (*session.State, []Event, *Fault) {
	if st.Won {
		return st, nil, fault(FaultAlreadyDone, "the story has already ended")
	}
	if err := in.Validate(); err != nil {
		return st, nil, fault(FaultAmbiguousTarget, err.Error())
	}

	// All mutation happens on a clone; the clone is only handed back
	// if the whole turn succeeds.
	next := st.Clone()

	events, flt := r.apply(next, in)
	if flt != nil {
		if r.log != nil {
			r.log.Debug("Turn rejected", "session", st.ID, "intent", in.Kind, "fault", flt.Code)
		}
		return st, nil, flt
	}

	next.Turns++
	next.UpdatedAt = time.Now().UTC()

	events = append(events, r.scanReveals(next)...)
	r.settleNPCs(next)

	events = append(events, Event{Type: EventActionResolved, Intent: in.Kind, Success: true})

	if r.won(next) {
		next.Won = true
		events = append(events, Event{Type: EventGameWon})
	}

	if r.log != nil {
		r.log.Info("Turn resolved", "session", st.ID, "intent", in.Kind, "turn", next.Turns, "events", len(events))
	}
	return next, events, nil
}

// apply validates and applies one intent on the cloned state. The
// first failed check wins and nothing before it may have mutated st.
func (r *Resolver) apply(st *session.State, in Intent) ([]Event, *Fault) {
	switch in.Kind {
	case IntentMove:
		return r.applyMove(st, in.Direction)
	case IntentTake:
		return r.applyTake(st, in.Target)
	case IntentDrop:
		return r.applyDrop(st, in.Target)
	case IntentOpen:
		return r.applyOpenClose(st, in.Target, true)
	case IntentClose:
		return r.applyOpenClose(st, in.Target, false)
	case IntentUse:
		return r.applyUse(st, in.Target, in.Object)
	case IntentExamine:
		return r.applyExamine(st, in.Target)
	case IntentTalk:
		return r.applyTalk(st, in.NPC, in.Topic)
	case IntentFlavor:
		return nil, nil
	}
	return nil, fault(FaultAmbiguousTarget, fmt.Sprintf("unknown intent %q", in.Kind))
}

// here returns the player's current location, which must exist: a
// session can only ever be moved along validated exits, so a missing
// location means the resolver and validator have drifted.
func (r *Resolver) here(st *session.State) *world.Location {
	loc, ok := r.w.GetLocation(st.Location)
	if !ok {
		panic(fmt.Sprintf("session %s is at unknown location %q", st.ID, st.Location))
	}
	return loc
}

func (r *Resolver) applyMove(st *session.State, direction string) ([]Event, *Fault) {
	loc := r.here(st)

	ex, ok := loc.Exits[strings.ToLower(direction)]
	if !ok {
		return nil, fault(FaultNoExit, fmt.Sprintf("there is no way %s from here", strings.ToLower(direction)))
	}
	if ResolveExit(ex, st) == Hidden {
		return nil, fault(FaultNotVisible, "you see nothing that way")
	}
	if !st.MeetsRequirement(ex.Requires) {
		return nil, fault(FaultExitLocked, "the way is locked")
	}

	dest, ok := r.w.GetLocation(ex.To)
	if !ok {
		panic(fmt.Sprintf("exit %s/%s leads to unknown location %q", st.Location, direction, ex.To))
	}
	if !st.MeetsRequirement(dest.Requires) {
		return nil, fault(FaultPreconditionFailed, "something bars the way")
	}

	from := st.Location
	st.Location = ex.To
	return []Event{{Type: EventLocationChanged, From: from, To: ex.To}}, nil
}

func (r *Resolver) applyTake(st *session.State, target string) ([]Event, *Fault) {
	loc := r.here(st)

	// Items dropped here earlier in the session are always in plain view.
	if st.PickupDropped(st.Location, target) {
		st.AddItem(target)
		return []Event{{Type: EventItemAdded, Entity: target}}, nil
	}

	p, ok := loc.Items[target]
	if !ok || st.TakenFrom(st.Location, target) {
		return nil, fault(FaultNotVisible, fmt.Sprintf("you see no %s here", target))
	}
	if ResolvePlacement(p, st) == Hidden {
		return nil, fault(FaultNotVisible, fmt.Sprintf("you see no %s here", target))
	}

	it, ok := r.w.GetItem(target)
	if !ok {
		panic(fmt.Sprintf("location %s places unknown item %q", st.Location, target))
	}
	if st.Holding(target) {
		return nil, fault(FaultAlreadyDone, fmt.Sprintf("you already have the %s", it.Name))
	}
	if !it.Portable {
		return nil, fault(FaultItemNotPortable, fmt.Sprintf("the %s cannot be carried", it.Name))
	}

	st.MarkTaken(st.Location, target)
	st.AddItem(target)
	return []Event{{Type: EventItemAdded, Entity: target}}, nil
}

func (r *Resolver) applyDrop(st *session.State, target string) ([]Event, *Fault) {
	if !st.Holding(target) {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("you are not carrying the %s", target))
	}

	it, ok := r.w.GetItem(target)
	if !ok {
		panic(fmt.Sprintf("inventory holds unknown item %q", target))
	}
	// Leaving a critical item behind can strand the game in an
	// unwinnable state, so the engine refuses outright.
	if it.HasProperty(world.PropertyCritical) || target == r.w.Victory.Item {
		return nil, fault(FaultSafetyGuardrail, fmt.Sprintf("something tells you not to leave the %s behind", it.Name))
	}

	loc := r.here(st)
	_, authoredHere := loc.Items[target]
	st.RemoveItem(target)
	st.DropAt(st.Location, target, authoredHere && st.TakenFrom(st.Location, target))
	return []Event{{Type: EventItemRemoved, Entity: target}}, nil
}

func (r *Resolver) applyOpenClose(st *session.State, target string, open bool) ([]Event, *Fault) {
	loc := r.here(st)

	it, visible := r.visibleItem(st, loc, target)
	if !visible {
		return nil, fault(FaultNotVisible, fmt.Sprintf("you see no %s here", target))
	}
	if !it.Container {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("the %s does not open", it.Name))
	}

	if st.ContainerOpen(target, it) == open {
		if open {
			return nil, fault(FaultAlreadyDone, fmt.Sprintf("the %s is already open", it.Name))
		}
		return nil, fault(FaultAlreadyDone, fmt.Sprintf("the %s is already closed", it.Name))
	}

	st.Open[target] = open
	if !open {
		return []Event{{Type: EventContainerClosed, Entity: target}}, nil
	}

	events := []Event{{Type: EventContainerOpened, Entity: target}}
	if it.RevealsFlag != "" && st.SetFlag(it.RevealsFlag) {
		events = append(events, Event{Type: EventFlagSet, Flag: it.RevealsFlag})
	}
	return events, nil
}

func (r *Resolver) applyUse(st *session.State, target, object string) ([]Event, *Fault) {
	if !st.Holding(target) {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("you are not carrying the %s", target))
	}
	it, ok := r.w.GetItem(target)
	if !ok {
		panic(fmt.Sprintf("inventory holds unknown item %q", target))
	}

	if it.Unlocks == "" {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("the %s has no obvious use here", it.Name))
	}
	if object != "" && object != it.Unlocks {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("the %s does not work on that", it.Name))
	}

	// Possession of a key already satisfies the requirement it unlocks;
	// using it explicitly is narrative confirmation, not extra state.
	return nil, nil
}

func (r *Resolver) applyExamine(st *session.State, target string) ([]Event, *Fault) {
	loc := r.here(st)

	if d, ok := loc.Details[target]; ok {
		if d.RequiresItem != "" && !st.Holding(d.RequiresItem) {
			return nil, fault(FaultPreconditionFailed, "you lack what you need to do that")
		}
		if d.SetsFlag != "" && st.SetFlag(d.SetsFlag) {
			return []Event{{Type: EventFlagSet, Flag: d.SetsFlag}}, nil
		}
		return nil, nil
	}

	if st.Holding(target) {
		return nil, nil
	}
	if _, visible := r.visibleItem(st, loc, target); visible {
		return nil, nil
	}
	if n, ok := r.w.GetNPC(target); ok && r.npcVisibleHere(st, loc, target, n) {
		return nil, nil
	}
	return nil, fault(FaultNotVisible, fmt.Sprintf("you see no %s here", target))
}

func (r *Resolver) applyTalk(st *session.State, npcKey, topicKey string) ([]Event, *Fault) {
	loc := r.here(st)

	n, ok := r.w.GetNPC(npcKey)
	if !ok || !r.npcVisibleHere(st, loc, npcKey, n) {
		return nil, fault(FaultNotVisible, fmt.Sprintf("%s is not here", npcKey))
	}

	if topicKey == "" {
		switch len(n.Topics) {
		case 0:
			return nil, nil
		case 1:
			for k := range n.Topics {
				topicKey = k
			}
		default:
			return nil, fault(FaultAmbiguousTarget, fmt.Sprintf("%s has much to say; pick a topic", n.Name))
		}
	}

	topic, ok := n.Topics[topicKey]
	if !ok {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("%s has nothing to say about that", n.Name))
	}
	if topic.RequiresItem != "" && !st.Holding(topic.RequiresItem) {
		return nil, fault(FaultPreconditionFailed, fmt.Sprintf("%s is not ready to discuss that with you", n.Name))
	}

	var events []Event
	if topic.SetsFlag != "" && st.SetFlag(topic.SetsFlag) {
		events = append(events, Event{Type: EventFlagSet, Flag: topic.SetsFlag})
	}
	if topic.TrustDelta != 0 {
		newTrust := st.AdjustTrust(npcKey, topic.TrustDelta)
		events = append(events, Event{Type: EventTrustChanged, NPC: npcKey, Trust: newTrust})
	}
	return events, nil
}

// visibleItem finds an item in the location that the player can
// currently see: an untaken authored placement that resolves visible,
// or an item dropped here this session.
func (r *Resolver) visibleItem(st *session.State, loc *world.Location, key string) (*world.Item, bool) {
	it, ok := r.w.GetItem(key)
	if !ok {
		return nil, false
	}
	for _, dropped := range st.Dropped[st.Location] {
		if dropped == key {
			return it, true
		}
	}
	p, placed := loc.Items[key]
	if !placed || st.TakenFrom(st.Location, key) {
		return nil, false
	}
	if ResolvePlacement(p, st) == Hidden {
		return nil, false
	}
	return it, true
}

func (r *Resolver) npcVisibleHere(st *session.State, loc *world.Location, key string, n *world.NPC) bool {
	if !NPCPresent(key, n, st, st.Location) {
		return false
	}
	if p, ok := loc.NPCs[key]; ok && ResolvePlacement(p, st) == Hidden {
		return false
	}
	return true
}

// scanReveals walks the player's current location after Apply and
// emits EntityRevealed for every hidden entity now visible for the
// first time this session. Keys are scanned in sorted order so event
// order is deterministic.
func (r *Resolver) scanReveals(st *session.State) []Event {
	loc := r.here(st)
	var events []Event

	for _, key := range sortedKeys(loc.Items) {
		if st.TakenFrom(st.Location, key) {
			continue
		}
		p := loc.Items[key]
		if _, revealed := Observe(key, p.Hidden, p.FindFlag, st); revealed {
			events = append(events, Event{Type: EventEntityRevealed, Entity: key})
		}
	}

	for _, key := range sortedKeys(loc.NPCs) {
		n, ok := r.w.GetNPC(key)
		if !ok || !NPCPresent(key, n, st, st.Location) {
			continue
		}
		p := loc.NPCs[key]
		if _, revealed := Observe(key, p.Hidden, p.FindFlag, st); revealed {
			events = append(events, Event{Type: EventEntityRevealed, Entity: key})
		}
	}

	for _, dir := range sortedExitKeys(loc.Exits) {
		ex := loc.Exits[dir]
		key := st.Location + "/" + dir
		if _, revealed := Observe(key, ex.Hidden, ex.FindFlag, st); revealed {
			events = append(events, Event{Type: EventEntityRevealed, Entity: key})
		}
	}

	return events
}

// settleNPCs evaluates every NPC's relocation rules and records
// permanent removals, even for NPCs the player has not met. Recording
// here keeps ResolveNPCLocation read-only for snapshot use.
func (r *Resolver) settleNPCs(st *session.State) {
	for key, n := range r.w.NPCs {
		if _, present := ResolveNPCLocation(key, n, st); !present {
			if st.Gone == nil {
				st.Gone = make(map[string]bool)
			}
			st.Gone[key] = true
		}
	}
}

func (r *Resolver) won(st *session.State) bool {
	v := r.w.Victory
	if st.Location != v.Location || !st.Flag(v.Flag) {
		return false
	}
	return v.Item == "" || st.Holding(v.Item)
}

func sortedKeys(m map[string]world.Placement) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedExitKeys(m map[string]*world.Exit) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
