package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

// MockNarrator is a deterministic Narrator for tests and for running
// the engine without a model. Its default output is plain templated
// prose derived from the turn's events or fault.
type MockNarrator struct {
	NarrateFunc func(ctx context.Context, req *NarrationRequest) (string, error)
	PingError   error

	// Track calls for testing
	NarrateCalls []*NarrationRequest

	mu sync.Mutex // protects NarrateCalls
}

var _ Narrator = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		NarrateCalls: make([]*NarrationRequest, 0),
	}
}

func (m *MockNarrator) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockNarrator) Narrate(ctx context.Context, req *NarrationRequest) (string, error) {
	m.mu.Lock()
	m.NarrateCalls = append(m.NarrateCalls, req)
	m.mu.Unlock()

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, req)
	}
	return RenderPlain(req), nil
}

// RenderPlain renders a turn as plain prose without a model. It reads
// only the request, so it respects the same visibility boundary the
// model narrators do.
func RenderPlain(req *NarrationRequest) string {
	var b strings.Builder

	if req.Fault != nil {
		if hint, ok := faultHints[req.Fault.Code]; ok {
			b.WriteString(hint)
		} else {
			b.WriteString("You can't do that.")
		}
		if req.Fault.Message != "" {
			fmt.Fprintf(&b, " (%s)", req.Fault.Message)
		}
		return b.String()
	}

	for _, ev := range req.Events {
		switch ev.Type {
		case engine.EventLocationChanged:
			fmt.Fprintf(&b, "You make your way to %s. ", placeName(req, ev.To))
		case engine.EventContainerOpened:
			fmt.Fprintf(&b, "You open the %s. ", ev.Entity)
		case engine.EventContainerClosed:
			fmt.Fprintf(&b, "You close the %s. ", ev.Entity)
		case engine.EventEntityRevealed:
			fmt.Fprintf(&b, "Something catches your eye: %s. ", shortKey(ev.Entity))
		case engine.EventItemAdded:
			fmt.Fprintf(&b, "You take the %s. ", ev.Entity)
		case engine.EventItemRemoved:
			fmt.Fprintf(&b, "You set down the %s. ", ev.Entity)
		case engine.EventTrustChanged:
			fmt.Fprintf(&b, "%s regards you differently. ", ev.NPC)
		case engine.EventGameWon:
			b.WriteString("You have done it. The story is complete. ")
		}
	}

	if b.Len() == 0 {
		b.WriteString("You look around. ")
	}

	if req.FirstTurn || anyLocationChange(req.Events) {
		describeScene(&b, req.Snapshot)
	}

	return strings.TrimSpace(b.String())
}

func anyLocationChange(events []engine.Event) bool {
	for _, ev := range events {
		if ev.Type == engine.EventLocationChanged {
			return true
		}
	}
	return false
}

func describeScene(b *strings.Builder, snap *engine.Snapshot) {
	if snap == nil {
		return
	}
	if snap.Atmosphere != "" {
		fmt.Fprintf(b, "%s ", snap.Atmosphere)
	}
	for _, it := range snap.Items {
		if it.Description != "" {
			fmt.Fprintf(b, "%s ", it.Description)
		} else {
			fmt.Fprintf(b, "You see a %s. ", it.Name)
		}
	}
	for _, n := range snap.NPCs {
		fmt.Fprintf(b, "%s is here. ", n.Name)
	}
	if len(snap.Exits) > 0 {
		dirs := make([]string, 0, len(snap.Exits))
		for _, ex := range snap.Exits {
			dirs = append(dirs, ex.Direction)
		}
		fmt.Fprintf(b, "Exits lead %s. ", strings.Join(dirs, ", "))
	}
}

// placeName resolves a location key to its display name when the
// snapshot is for that location, else falls back to the key.
func placeName(req *NarrationRequest, key string) string {
	if req.Snapshot != nil && req.Snapshot.Location == key && req.Snapshot.Name != "" {
		return req.Snapshot.Name
	}
	return key
}

// shortKey strips a "location/" prefix from reveal keys.
func shortKey(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
