package services

import (
	"context"

	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

// Narrator turns a resolved turn into prose. Implementations receive
// only the visibility-filtered snapshot and the events or fault produced
// by the resolver; they never see raw session state, so they cannot leak
// hidden entities.
type Narrator interface {
	// Narrate renders one turn. Events and Fault are mutually exclusive:
	// a successful turn carries events, a rejected one carries a fault.
	Narrate(ctx context.Context, req *NarrationRequest) (string, error)

	// Ping checks that the backing model is reachable.
	Ping(ctx context.Context) error
}

// NarrationRequest is everything a narrator may base its prose on.
type NarrationRequest struct {
	WorldName  string           `json:"world_name"`
	Intent     engine.Intent    `json:"intent"`
	PlayerText string           `json:"player_text,omitempty"` // Raw input, for tone only
	Events     []engine.Event   `json:"events,omitempty"`
	Fault      *engine.Fault    `json:"fault,omitempty"`
	Snapshot   *engine.Snapshot `json:"snapshot"`
	FirstTurn  bool             `json:"first_turn,omitempty"` // Opening scene, describe at length
}
