package engine

import (
	"testing"

	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

func TestSnapshot_NeverIncludesHiddenEntities(t *testing.T) {
	w := testWorld()
	w.Locations["library"].Exits["behind_shelf"] = &world.Exit{To: "hall", Hidden: true, FindFlag: "shelf_moved", OneWay: true}
	r := NewResolver(w, nil)
	st := session.New("test_manor", w)

	st, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}

	snap := r.Snapshot(st)
	for _, it := range snap.Items {
		if it.Key == "key" {
			t.Error("hidden key leaked into snapshot")
		}
	}
	for _, ex := range snap.Exits {
		if ex.Direction == "behind_shelf" {
			t.Error("hidden exit leaked into snapshot")
		}
	}

	// After the reveal, the key appears.
	st, _, flt = r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt != nil {
		t.Fatal(flt)
	}
	snap = r.Snapshot(st)
	found := false
	for _, it := range snap.Items {
		if it.Key == "key" {
			found = true
		}
	}
	if !found {
		t.Error("revealed key missing from snapshot")
	}
}

func TestSnapshot_DestinationKnownPhrasing(t *testing.T) {
	r, st := newTestResolver(t)

	snap := r.Snapshot(st)
	if len(snap.Exits) != 1 {
		t.Fatalf("expected one exit, got %d", len(snap.Exits))
	}
	if snap.Exits[0].Destination != "Library" {
		t.Errorf("known destination should carry the location name, got %q", snap.Exits[0].Destination)
	}

	// An unknown destination is listed but unnamed.
	r.w.Locations["hall"].Exits["north"].DestinationKnown = false
	snap = r.Snapshot(st)
	if snap.Exits[0].Destination != "" {
		t.Errorf("unknown destination should be unnamed, got %q", snap.Exits[0].Destination)
	}
}

func TestSnapshot_ReadOnly(t *testing.T) {
	r, st := newTestResolver(t)

	before := st.Clone()
	_ = r.Snapshot(st)
	_ = r.Snapshot(st)

	if len(st.Discovered) != len(before.Discovered) || st.Turns != before.Turns {
		t.Error("snapshot mutated session state")
	}
}

func TestSnapshot_TakenItemsDisappear(t *testing.T) {
	r, st := newTestResolver(t)

	st, _, flt := r.Resolve(st, Intent{Kind: IntentMove, Direction: "north"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, _, flt = r.Resolve(st, Intent{Kind: IntentOpen, Target: "drawer"})
	if flt != nil {
		t.Fatal(flt)
	}
	st, _, flt = r.Resolve(st, Intent{Kind: IntentTake, Target: "key"})
	if flt != nil {
		t.Fatal(flt)
	}

	snap := r.Snapshot(st)
	for _, it := range snap.Items {
		if it.Key == "key" {
			t.Error("taken key still listed at the location")
		}
	}
	held := false
	for _, it := range snap.Inventory {
		if it.Key == "key" {
			held = true
		}
	}
	if !held {
		t.Error("key missing from snapshot inventory")
	}
}
