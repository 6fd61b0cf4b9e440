package main

import (
	"testing"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		input    string
		expected engine.Intent
	}{
		{"go north", engine.Intent{Kind: engine.IntentMove, Direction: "north"}},
		{"n", engine.Intent{Kind: engine.IntentMove, Direction: "north"}},
		{"down", engine.Intent{Kind: engine.IntentMove, Direction: "down"}},
		{"walk e", engine.Intent{Kind: engine.IntentMove, Direction: "east"}},
		{"take the brass key", engine.Intent{Kind: engine.IntentTake, Target: "brass_key"}},
		{"pick up lamp", engine.Intent{Kind: engine.IntentTake, Target: "lamp"}},
		{"drop lamp", engine.Intent{Kind: engine.IntentDrop, Target: "lamp"}},
		{"open drawer", engine.Intent{Kind: engine.IntentOpen, Target: "drawer"}},
		{"shut the drawer", engine.Intent{Kind: engine.IntentClose, Target: "drawer"}},
		{"use key on door", engine.Intent{Kind: engine.IntentUse, Target: "key", Object: "door"}},
		{"use lamp", engine.Intent{Kind: engine.IntentUse, Target: "lamp"}},
		{"examine plaque", engine.Intent{Kind: engine.IntentExamine, Target: "plaque"}},
		{"x plaque", engine.Intent{Kind: engine.IntentExamine, Target: "plaque"}},
		{"look at the painting", engine.Intent{Kind: engine.IntentExamine, Target: "painting"}},
		{"look", engine.Intent{Kind: engine.IntentFlavor, Text: "look"}},
		{"talk to butler", engine.Intent{Kind: engine.IntentTalk, NPC: "butler"}},
		{"talk to butler about the key", engine.Intent{Kind: engine.IntentTalk, NPC: "butler", Topic: "key"}},
		{"sing a song", engine.Intent{Kind: engine.IntentFlavor, Text: "sing a song"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseIntent(tt.input)
			if err != nil {
				t.Fatalf("ParseIntent(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseIntent(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseIntentErrors(t *testing.T) {
	for _, input := range []string{"", "go", "go sideways", "take", "open", "talk to", "look at"} {
		if _, err := ParseIntent(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}
