package main

import (
	"fmt"
	"strings"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
	"u": "up", "d": "down",
	"north": "north", "south": "south", "east": "east", "west": "west",
	"up": "up", "down": "down", "in": "in", "out": "out",
	"northeast": "northeast", "northwest": "northwest",
	"southeast": "southeast", "southwest": "southwest",
}

// ParseIntent turns a typed command into a structured intent. Unrecognized
// input becomes a flavor intent so the narrator can still respond in
// character; the engine treats flavor as a no-op.
func ParseIntent(input string) (engine.Intent, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(words) == 0 {
		return engine.Intent{}, fmt.Errorf("empty command")
	}

	verb := words[0]
	rest := words[1:]

	// Bare directions move: "north", "n".
	if len(words) == 1 {
		if dir, ok := directionAliases[verb]; ok {
			return engine.Intent{Kind: engine.IntentMove, Direction: dir}, nil
		}
	}

	switch verb {
	case "go", "move", "walk", "head":
		if len(rest) == 0 {
			return engine.Intent{}, fmt.Errorf("go where?")
		}
		dir, ok := directionAliases[rest[len(rest)-1]]
		if !ok {
			return engine.Intent{}, fmt.Errorf("unknown direction %q", rest[len(rest)-1])
		}
		return engine.Intent{Kind: engine.IntentMove, Direction: dir}, nil

	case "take", "get", "grab", "pick":
		target := strings.Join(stripArticles(rest), "_")
		if target == "" || target == "up" {
			return engine.Intent{}, fmt.Errorf("take what?")
		}
		target = strings.TrimPrefix(target, "up_")
		return engine.Intent{Kind: engine.IntentTake, Target: target}, nil

	case "drop", "discard", "leave":
		target := strings.Join(stripArticles(rest), "_")
		if target == "" {
			return engine.Intent{}, fmt.Errorf("drop what?")
		}
		return engine.Intent{Kind: engine.IntentDrop, Target: target}, nil

	case "open":
		target := strings.Join(stripArticles(rest), "_")
		if target == "" {
			return engine.Intent{}, fmt.Errorf("open what?")
		}
		return engine.Intent{Kind: engine.IntentOpen, Target: target}, nil

	case "close", "shut":
		target := strings.Join(stripArticles(rest), "_")
		if target == "" {
			return engine.Intent{}, fmt.Errorf("close what?")
		}
		return engine.Intent{Kind: engine.IntentClose, Target: target}, nil

	case "use":
		// "use key on door" names both sides; bare "use key" is allowed.
		parts := stripArticles(rest)
		for i, p := range parts {
			if p == "on" || p == "with" {
				return engine.Intent{
					Kind:   engine.IntentUse,
					Target: strings.Join(parts[:i], "_"),
					Object: strings.Join(parts[i+1:], "_"),
				}, nil
			}
		}
		target := strings.Join(parts, "_")
		if target == "" {
			return engine.Intent{}, fmt.Errorf("use what?")
		}
		return engine.Intent{Kind: engine.IntentUse, Target: target}, nil

	case "examine", "inspect", "x", "read":
		target := strings.Join(stripArticles(rest), "_")
		if target == "" {
			return engine.Intent{}, fmt.Errorf("examine what?")
		}
		return engine.Intent{Kind: engine.IntentExamine, Target: target}, nil

	case "look", "l":
		if len(rest) > 0 && (rest[0] == "at" || rest[0] == "in") {
			target := strings.Join(stripArticles(rest[1:]), "_")
			if target == "" {
				return engine.Intent{}, fmt.Errorf("look at what?")
			}
			return engine.Intent{Kind: engine.IntentExamine, Target: target}, nil
		}
		return engine.Intent{Kind: engine.IntentFlavor, Text: input}, nil

	case "talk", "speak", "ask":
		// "talk to butler about the key"
		parts := stripArticles(rest)
		if len(parts) > 0 && parts[0] == "to" {
			parts = parts[1:]
		}
		if len(parts) == 0 {
			return engine.Intent{}, fmt.Errorf("talk to whom?")
		}
		for i, p := range parts {
			if p == "about" {
				return engine.Intent{
					Kind:  engine.IntentTalk,
					NPC:   strings.Join(parts[:i], "_"),
					Topic: strings.Join(parts[i+1:], "_"),
				}, nil
			}
		}
		return engine.Intent{Kind: engine.IntentTalk, NPC: strings.Join(parts, "_")}, nil

	default:
		return engine.Intent{Kind: engine.IntentFlavor, Text: input}, nil
	}
}

// stripArticles drops "a", "an", "the" so "take the brass key" and
// "take brass key" parse the same.
func stripArticles(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "a" || w == "an" || w == "the" {
			continue
		}
		out = append(out, w)
	}
	return out
}
