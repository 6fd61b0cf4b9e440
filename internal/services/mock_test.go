package services

import (
	"context"
	"strings"
	"testing"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

func TestMockNarrator_DefaultRendering(t *testing.T) {
	m := NewMockNarrator()

	req := &NarrationRequest{
		WorldName: "Blackwood Manor",
		Events: []engine.Event{
			{Type: engine.EventContainerOpened, Entity: "drawer", Intent: engine.IntentOpen},
			{Type: engine.EventEntityRevealed, Entity: "hall/brass_key"},
		},
		Snapshot: sampleSnapshot(),
	}

	out, err := m.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if !strings.Contains(out, "open the drawer") {
		t.Errorf("Expected open narration, got %q", out)
	}
	if !strings.Contains(out, "brass_key") {
		t.Errorf("Expected reveal to name the item without its location prefix, got %q", out)
	}
	if strings.Contains(out, "hall/") {
		t.Errorf("Reveal keys must not leak placement prefixes, got %q", out)
	}

	if len(m.NarrateCalls) != 1 {
		t.Errorf("Expected 1 recorded call, got %d", len(m.NarrateCalls))
	}
}

func TestMockNarrator_FaultRendering(t *testing.T) {
	m := NewMockNarrator()

	req := &NarrationRequest{
		Fault:    &engine.Fault{Code: engine.FaultExitLocked, Message: "the door is locked"},
		Snapshot: sampleSnapshot(),
	}

	out, err := m.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if !strings.Contains(out, "barred") {
		t.Errorf("Expected locked-exit hint, got %q", out)
	}
}

func TestMockNarrator_SceneOnMove(t *testing.T) {
	m := NewMockNarrator()

	req := &NarrationRequest{
		Events: []engine.Event{
			{Type: engine.EventLocationChanged, From: "cellar", To: "hall"},
		},
		Snapshot: sampleSnapshot(),
	}

	out, err := m.Narrate(context.Background(), req)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if !strings.Contains(out, "Entrance Hall") {
		t.Errorf("Expected destination name in narration, got %q", out)
	}
	if !strings.Contains(out, "north") {
		t.Errorf("Expected exits described after a move, got %q", out)
	}
}

func TestMockNarrator_Override(t *testing.T) {
	m := NewMockNarrator()
	m.NarrateFunc = func(ctx context.Context, req *NarrationRequest) (string, error) {
		return "custom prose", nil
	}

	out, err := m.Narrate(context.Background(), &NarrationRequest{Snapshot: sampleSnapshot()})
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if out != "custom prose" {
		t.Errorf("Expected override output, got %q", out)
	}
}
