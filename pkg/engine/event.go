package engine

// EventType enumerates the structured events a resolved turn emits.
// The event list plus the post-turn perception snapshot is the entire
// input the narrator may use.
type EventType string

const (
	EventLocationChanged EventType = "location_changed"
	EventContainerOpened EventType = "container_opened"
	EventContainerClosed EventType = "container_closed"
	EventEntityRevealed  EventType = "entity_revealed"
	EventItemAdded       EventType = "item_added_to_inventory"
	EventItemRemoved     EventType = "item_removed_from_inventory"
	EventFlagSet         EventType = "flag_set"
	EventTrustChanged    EventType = "trust_changed"
	EventActionResolved  EventType = "action_resolved"
	EventGameWon         EventType = "game_won"
)

// Event describes one state change from a resolved turn. Fields are
// populated per type: Entity for item/container/reveal events, From/To
// for location changes, Flag for flag sets, NPC and Trust for trust
// changes.
type Event struct {
	Type   EventType  `json:"type"`
	Entity string     `json:"entity,omitempty"`
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
	Flag   string     `json:"flag,omitempty"`
	NPC    string     `json:"npc,omitempty"`
	Trust  int        `json:"trust,omitempty"` // New trust value after the change
	Intent IntentKind `json:"intent,omitempty"`
	Success bool      `json:"success,omitempty"` // action_resolved only
}
