package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

// NarratorSystemPrompt frames every narration call. The engine has
// already decided what happened; the model's only job is to describe it.
const NarratorSystemPrompt = `You are the narrator of a text adventure set in "%s". You render the outcome of each turn as vivid second-person prose. You never decide what happens; the game engine has already decided.

### CRITICAL DIRECTIVES:
- Describe ONLY the events and scene data you are given. The engine's event list is the complete truth of the turn.
- DO NOT INVENT ITEMS, EXITS, CHARACTERS, OR LOCATIONS. If it is not in the scene data, it does not exist.
- DO NOT MENTION anything marked hidden or absent from the scene data, even to hint that something might be there.
- If the turn carries a fault instead of events, the action FAILED. Narrate the failure using the fault's meaning and do not let the action succeed in prose.
- Exits without a named destination lead somewhere the player has not yet seen. Phrase them as unexplored; never name where they go.

### Writing rules:
- Respond with 1 to 3 short paragraphs, at most 3 sentences each.
- Second person, present tense.
- When a character speaks, start a new paragraph using the format:
  CharacterName: "Spoken line here."
- Do not break the fourth wall. Do not mention the game engine, events, flags, or JSON.
- Do not speak for the player or decide their next action.`

// firstTurnAddendum asks for a fuller opening scene on session start.
const firstTurnAddendum = `

This is the opening of the game. Set the scene fully: describe the location, its atmosphere, and everything visible, ending with a hook that invites exploration.`

// faultHints maps engine fault codes to narration guidance. The model
// sees the hint, not the code.
var faultHints = map[engine.FaultCode]string{
	engine.FaultNotVisible:         "The player reaches for something that, as far as they know, is not there.",
	engine.FaultExitLocked:         "The way is barred. Describe the obstacle without revealing how to clear it.",
	engine.FaultPreconditionFailed: "Something the action needs is missing. Hint at the lack without naming mechanics.",
	engine.FaultItemNotPortable:    "The thing cannot be carried. It is too heavy, fixed, or otherwise immovable.",
	engine.FaultAlreadyDone:        "There is nothing left to do; it has already happened.",
	engine.FaultSafetyGuardrail:    "The player balks at abandoning something too important to lose.",
	engine.FaultNoExit:             "There is no way to go in that direction.",
	engine.FaultAmbiguousTarget:    "It is unclear what the player means. Ask, in narration, which they intend.",
}

// BuildPrompt renders a narration request into a system prompt and a
// user message. The user message carries the scene as JSON so the model
// cannot claim it narrated something it was never shown.
func BuildPrompt(req *NarrationRequest) (system string, user string, err error) {
	system = fmt.Sprintf(NarratorSystemPrompt, req.WorldName)
	if req.FirstTurn {
		system += firstTurnAddendum
	}

	var b strings.Builder

	scene, err := json.Marshal(req.Snapshot)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	b.WriteString("SCENE:\n")
	b.Write(scene)
	b.WriteString("\n\n")

	if req.PlayerText != "" {
		fmt.Fprintf(&b, "PLAYER SAID: %q\n\n", req.PlayerText)
	}

	if req.Fault != nil {
		fmt.Fprintf(&b, "THE ACTION FAILED. %s\n", faultHints[req.Fault.Code])
		if req.Fault.Message != "" {
			fmt.Fprintf(&b, "Detail: %s\n", req.Fault.Message)
		}
	} else {
		events, err := json.Marshal(req.Events)
		if err != nil {
			return "", "", fmt.Errorf("failed to marshal events: %w", err)
		}
		b.WriteString("EVENTS THIS TURN:\n")
		b.Write(events)
		b.WriteString("\n")
	}

	return system, b.String(), nil
}
