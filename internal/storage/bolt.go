package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/saltmarsh-games/worldengine/pkg/session"
)

var sessionsBucket = []byte("sessions")

// BoltStorage implements Storage with a local bbolt file, for running
// the engine without a Redis instance. Sessions do not expire.
type BoltStorage struct {
	*worldLibrary
	db     *bolt.DB
	logger *slog.Logger
}

var _ Storage = (*BoltStorage)(nil)

// NewBoltStorage opens (or creates) the database file at path.
func NewBoltStorage(path string, dataDir string, logger *slog.Logger) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &BoltStorage{
		worldLibrary: newWorldLibrary(dataDir),
		db:           db,
		logger:       logger,
	}, nil
}

func (b *BoltStorage) Ping(_ context.Context) error {
	// An open handle is a healthy handle; bbolt has no server to reach.
	if b.db == nil {
		return fmt.Errorf("bolt database is not open")
	}
	return nil
}

func (b *BoltStorage) Close() error {
	if err := b.db.Close(); err != nil {
		b.logger.Error("Failed to close bolt database", "error", err)
		return err
	}
	b.logger.Info("Bolt database closed")
	return nil
}

func (b *BoltStorage) SaveSession(_ context.Context, st *session.State) error {
	st.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(st)
	if err != nil {
		b.logger.Error("Failed to marshal session", "uuid", st.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(st.ID.String()), data)
	})
	if err != nil {
		b.logger.Error("Failed to save session", "uuid", st.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (b *BoltStorage) LoadSession(_ context.Context, id uuid.UUID) (*session.State, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(id.String()))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		b.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if data == nil {
		b.logger.Warn("Session not found", "uuid", id)
		return nil, nil
	}

	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		b.logger.Error("Failed to unmarshal session", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &st, nil
}

func (b *BoltStorage) DeleteSession(_ context.Context, id uuid.UUID) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id.String()))
	})
	if err != nil {
		b.logger.Error("Failed to delete session", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
