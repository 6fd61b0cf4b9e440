package engine

import "fmt"

// IntentKind enumerates the structured actions the resolver accepts.
// Producing an Intent from free text is the intent parser's job; the
// resolver never sees natural language.
type IntentKind string

const (
	IntentMove    IntentKind = "move"
	IntentTake    IntentKind = "take"
	IntentDrop    IntentKind = "drop"
	IntentOpen    IntentKind = "open"
	IntentClose   IntentKind = "close"
	IntentUse     IntentKind = "use"
	IntentExamine IntentKind = "examine"
	IntentTalk    IntentKind = "talk"
	IntentFlavor  IntentKind = "flavor" // No target; narration-only fallback
)

// Intent is an already-structured action descriptor for one turn.
type Intent struct {
	Kind      IntentKind `json:"kind"`
	Direction string     `json:"direction,omitempty"` // move
	Target    string     `json:"target,omitempty"`    // take/drop/open/close/use/examine
	Object    string     `json:"object,omitempty"`    // use: what the target is used on
	NPC       string     `json:"npc,omitempty"`       // talk
	Topic     string     `json:"topic,omitempty"`     // talk, optional
	Text      string     `json:"text,omitempty"`      // flavor: raw player text for narration only
}

// Validate checks the intent's shape, not its meaning against any
// world: kind-specific required fields must be present.
func (in Intent) Validate() error {
	switch in.Kind {
	case IntentMove:
		if in.Direction == "" {
			return fmt.Errorf("move intent requires a direction")
		}
	case IntentTake, IntentDrop, IntentOpen, IntentClose, IntentUse, IntentExamine:
		if in.Target == "" {
			return fmt.Errorf("%s intent requires a target", in.Kind)
		}
	case IntentTalk:
		if in.NPC == "" {
			return fmt.Errorf("talk intent requires an npc")
		}
	case IntentFlavor:
		// No requirements.
	default:
		return fmt.Errorf("unknown intent kind %q", in.Kind)
	}
	return nil
}
