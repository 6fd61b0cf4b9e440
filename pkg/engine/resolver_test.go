package engine

import (
	"encoding/json"
	"bytes"
	"testing"

	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// testWorld is the hall/library fixture: symmetric exits, a drawer in
// the library that reveals a hidden key when opened, and victory by
// holding the key in the library.
func testWorld() *world.World {
	return &world.World{
		Name:  "Test Manor",
		Start: "hall",
		Locations: map[string]*world.Location{
			"hall": {
				Name: "Entrance Hall",
				Exits: map[string]*world.Exit{
					"north": {To: "library", DestinationKnown: true},
				},
			},
			"library": {
				Name: "Library",
				Exits: map[string]*world.Exit{
					"south": {To: "hall", DestinationKnown: true},
				},
				Items: map[string]world.Placement{
					"drawer": {Description: "A desk drawer, slightly ajar."},
					"key":    {Hidden: true, FindFlag: "drawer_open"},
				},
			},
		},
		Items: map[string]*world.Item{
			"drawer": {Name: "drawer", Container: true, RevealsFlag: "drawer_open"},
			"key":    {Name: "brass key", Portable: true},
		},
		Victory: world.Victory{Location: "library", Flag: "drawer_open", Item: "key"},
	}
}

func newTestResolver(t *testing.T) (*Resolver, *session.State) {
	t.Helper()
	w := testWorld()
	return NewResolver(w, nil), session.New("test_manor", w)
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestResolve_EndToEndScenario(t *testing.T) {
	r, st := newTestResolver(t)

	// Taking the key before opening the drawer fails and leaves
	// inventory empty.
	next, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatalf("move north failed: %+v", flt)
	}
	if next.Location != "library" {
		t.Fatalf("expected library, got %q", next.Location)
	}
	st = next

	_, _, flt = r.Resolve(st, Intent{Kind: IntentTake, Target: "key"})
	if flt == nil || flt.Code != FaultNotVisible {
		t.Fatalf("expected NOT_VISIBLE taking hidden key, got %+v", flt)
	}
	if len(st.Inventory) != 0 {
		t.Fatalf("inventory should be empty after fault, got %v", st.Inventory)
	}

	// Opening the drawer sets the flag and reveals the key.
	next, events, flt := r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt != nil {
		t.Fatalf("open drawer failed: %+v", flt)
	}
	st = next

	var sawFlag, sawReveal bool
	for _, e := range events {
		if e.Type == EventFlagSet && e.Flag == "drawer_open" {
			sawFlag = true
		}
		if e.Type == EventEntityRevealed && e.Entity == "key" {
			sawReveal = true
		}
	}
	if !sawFlag {
		t.Errorf("expected flag_set(drawer_open), got %v", eventTypes(events))
	}
	if !sawReveal {
		t.Errorf("expected entity_revealed(key), got %v", eventTypes(events))
	}

	// Now the key can be taken, and taking it wins the game.
	next, events, flt = r.Resolve(st, Intent{Kind: IntentTake, Target: "key"})
	if flt != nil {
		t.Fatalf("take key failed: %+v", flt)
	}
	st = next

	if !st.Holding("key") {
		t.Error("expected key in inventory")
	}
	var sawAdd, sawWon bool
	for _, e := range events {
		if e.Type == EventItemAdded && e.Entity == "key" {
			sawAdd = true
		}
		if e.Type == EventGameWon {
			sawWon = true
		}
	}
	if !sawAdd {
		t.Errorf("expected item_added_to_inventory(key), got %v", eventTypes(events))
	}
	if !sawWon {
		t.Errorf("expected game_won, got %v", eventTypes(events))
	}
	if !st.Won {
		t.Error("expected session in Won state")
	}

	// The Won state is terminal.
	_, _, flt = r.Resolve(st, Intent{Kind: IntentMove, Direction: "south"})
	if flt == nil || flt.Code != FaultAlreadyDone {
		t.Fatalf("expected ALREADY_DONE after win, got %+v", flt)
	}
}

func TestResolve_NoMutationOnFault(t *testing.T) {
	r, st := newTestResolver(t)

	before, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}

	faultIntents := []Intent{
		{Kind: IntentMove, Direction: "up"},           // NO_EXIT
		{Kind: IntentTake, Target: "key"},             // NOT_VISIBLE (wrong room entirely)
		{Kind: IntentDrop, Target: "key"},             // PRECONDITION_FAILED
		{Kind: IntentOpen, Target: "drawer"},          // NOT_VISIBLE here
		{Kind: IntentTalk, NPC: "ghost"},              // NOT_VISIBLE
		{Kind: IntentExamine, Target: "portrait"},     // NOT_VISIBLE
	}

	for _, in := range faultIntents {
		got, events, flt := r.Resolve(st, in)
		if flt == nil {
			t.Fatalf("intent %+v: expected fault", in)
		}
		if len(events) != 0 {
			t.Errorf("intent %+v: fault returned events %v", in, events)
		}
		if got != st {
			t.Errorf("intent %+v: fault returned a different state value", in)
		}
		after, err := json.Marshal(st)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(before, after) {
			t.Errorf("intent %+v: state mutated on fault:\nbefore %s\nafter  %s", in, before, after)
		}
	}
}

func TestResolve_MoveFaults(t *testing.T) {
	w := testWorld()
	w.Locations["hall"].Exits["east"] = &world.Exit{To: "library", Hidden: true, FindFlag: "secret_door", OneWay: true}
	w.Locations["hall"].Exits["west"] = &world.Exit{To: "library", Requires: &world.Requirement{Item: "key"}, OneWay: true}
	r := NewResolver(w, nil)
	st := session.New("test_manor", w)

	tests := []struct {
		name      string
		direction string
		want      FaultCode
	}{
		{"unknown direction is NO_EXIT", "down", FaultNoExit},
		{"hidden exit is NOT_VISIBLE", "east", FaultNotVisible},
		{"keyed exit is EXIT_LOCKED", "west", FaultExitLocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: tt.direction})
			if flt == nil || flt.Code != tt.want {
				t.Errorf("expected %s, got %+v", tt.want, flt)
			}
		})
	}

	// Direction matching is case-insensitive exact.
	next, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "NORTH"})
	if flt != nil {
		t.Fatalf("NORTH should resolve: %+v", flt)
	}
	if next.Location != "library" {
		t.Errorf("expected library, got %q", next.Location)
	}
}

func TestResolve_TakeNonPortable(t *testing.T) {
	r, st := newTestResolver(t)

	next, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}

	_, _, flt = r.Resolve(next, Intent{Kind: IntentTake, Target: "drawer"})
	if flt == nil || flt.Code != FaultItemNotPortable {
		t.Fatalf("expected ITEM_NOT_PORTABLE, got %+v", flt)
	}
}

func TestResolve_OpenTwiceIsAlreadyDone(t *testing.T) {
	r, st := newTestResolver(t)

	st, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, _, flt = r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt != nil {
		t.Fatal(flt)
	}
	_, _, flt = r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt == nil || flt.Code != FaultAlreadyDone {
		t.Fatalf("expected ALREADY_DONE, got %+v", flt)
	}
}

func TestResolve_RevealFiresOnlyOnce(t *testing.T) {
	r, st := newTestResolver(t)

	st, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, events, flt := r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt != nil {
		t.Fatal(flt)
	}
	if n := countReveals(events, "key"); n != 1 {
		t.Fatalf("expected exactly one reveal of key, got %d", n)
	}

	// Looking again does not re-fire the reveal.
	st, events, flt = r.Resolve(st, Intent{Kind: IntentExamine, Target: "drawer"})
	if flt != nil {
		t.Fatal(flt)
	}
	if n := countReveals(events, "key"); n != 0 {
		t.Errorf("reveal re-fired on second look: %v", events)
	}

	_, events, flt = r.Resolve(st, Intent{Kind: IntentFlavor, Text: "whistle a tune"})
	if flt != nil {
		t.Fatal(flt)
	}
	if n := countReveals(events, "key"); n != 0 {
		t.Errorf("reveal re-fired on third turn: %v", events)
	}
}

func countReveals(events []Event, entity string) int {
	n := 0
	for _, e := range events {
		if e.Type == EventEntityRevealed && e.Entity == entity {
			n++
		}
	}
	return n
}

func TestResolve_DropAndRetake(t *testing.T) {
	w := testWorld()
	// A pebble in the hall the player can freely carry around.
	w.Locations["hall"].Items = map[string]world.Placement{
		"pebble": {Description: "A smooth pebble."},
	}
	w.Items["pebble"] = &world.Item{Name: "pebble", Portable: true}
	r := NewResolver(w, nil)
	st := session.New("test_manor", w)

	st, _, flt := r.Resolve(st, Intent{Kind: IntentTake, Target: "pebble"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, _, flt = r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, _, flt = r.Resolve(st, Intent{Kind: IntentDrop, Target: "pebble"})
	if flt != nil {
		t.Fatal(flt)
	}
	if st.Holding("pebble") {
		t.Error("pebble should be out of inventory")
	}

	st, _, flt = r.Resolve(st, Intent{Kind: IntentTake, Target: "pebble"})
	if flt != nil {
		t.Fatalf("retaking dropped pebble failed: %+v", flt)
	}
	if !st.Holding("pebble") {
		t.Error("pebble should be back in inventory")
	}
}

func TestResolve_DropCriticalIsGuarded(t *testing.T) {
	w := testWorld()
	w.StartInventory = []string{"amulet"}
	w.Items["amulet"] = &world.Item{
		Name:       "silver amulet",
		Portable:   true,
		Properties: []string{world.PropertyCritical},
	}
	r := NewResolver(w, nil)
	st := session.New("test_manor", w)

	_, _, flt := r.Resolve(st, Intent{Kind: IntentDrop, Target: "amulet"})
	if flt == nil || flt.Code != FaultSafetyGuardrail {
		t.Fatalf("expected SAFETY_GUARDRAIL, got %+v", flt)
	}
	if !st.Holding("amulet") {
		t.Error("amulet should still be held")
	}
}

func TestResolve_TalkTopics(t *testing.T) {
	w := testWorld()
	w.Locations["hall"].NPCs = map[string]world.Placement{
		"butler": {Description: "The butler waits by the stairs."},
	}
	w.NPCs = map[string]*world.NPC{
		"butler": {
			Name:     "Jennings",
			Location: "hall",
			Topics: map[string]world.Topic{
				"weather": {TrustDelta: 1},
				"murder":  {SetsFlag: "butler_confessed", RequiresItem: "key"},
			},
		},
	}
	r := NewResolver(w, nil)
	st := session.New("test_manor", w)

	// Multiple topics without a choice is ambiguous.
	_, _, flt := r.Resolve(st, Intent{Kind: IntentTalk, NPC: "butler"})
	if flt == nil || flt.Code != FaultAmbiguousTarget {
		t.Fatalf("expected AMBIGUOUS_TARGET, got %+v", flt)
	}

	// The gated topic needs the key.
	_, _, flt = r.Resolve(st, Intent{Kind: IntentTalk, NPC: "butler", Topic: "murder"})
	if flt == nil || flt.Code != FaultPreconditionFailed {
		t.Fatalf("expected PRECONDITION_FAILED, got %+v", flt)
	}

	st, events, flt := r.Resolve(st, Intent{Kind: IntentTalk, NPC: "butler", Topic: "weather"})
	if flt != nil {
		t.Fatal(flt)
	}
	if st.Trust["butler"] != 1 {
		t.Errorf("expected trust 1, got %d", st.Trust["butler"])
	}
	var sawTrust bool
	for _, e := range events {
		if e.Type == EventTrustChanged && e.NPC == "butler" && e.Trust == 1 {
			sawTrust = true
		}
	}
	if !sawTrust {
		t.Errorf("expected trust_changed event, got %v", eventTypes(events))
	}
}

func TestResolve_TurnCounterOnlyOnSuccess(t *testing.T) {
	r, st := newTestResolver(t)

	_, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "down"})
	if flt == nil {
		t.Fatal("expected fault")
	}
	if st.Turns != 0 {
		t.Errorf("turn counter advanced on fault: %d", st.Turns)
	}

	next, _, flt := r.Resolve(st, Intent{Kind: IntentFlavor})
	if flt != nil {
		t.Fatal(flt)
	}
	if next.Turns != 1 {
		t.Errorf("expected 1 turn, got %d", next.Turns)
	}
}
