package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/pkg/session"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// Storage is the unified interface for session persistence and world
// definition loading. Sessions live in the configured driver (Redis or
// Bolt); worlds are filesystem-backed YAML.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations
	SaveSession(ctx context.Context, st *session.State) error
	// LoadSession returns nil when the session does not exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// World operations (filesystem-backed)
	ListWorlds(ctx context.Context) ([]string, error)
	GetWorld(ctx context.Context, key string) (*world.World, error)
}
