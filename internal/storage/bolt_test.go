package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/pkg/session"
)

func setupTestBolt(t *testing.T) *BoltStorage {
	t.Helper()

	dir := t.TempDir()
	bs, err := NewBoltStorage(filepath.Join(dir, "sessions.db"), dir, testLogger())
	if err != nil {
		t.Fatalf("Failed to open bolt storage: %v", err)
	}
	t.Cleanup(func() { bs.Close() })
	return bs
}

func TestBoltStorage_SaveAndLoadSession(t *testing.T) {
	bs := setupTestBolt(t)
	ctx := context.Background()

	st := session.New("manor", testWorld())
	st.Turns = 7
	st.Flags["drawer_open"] = true

	if err := bs.SaveSession(ctx, st); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := bs.LoadSession(ctx, st.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil session")
	}
	if loaded.Turns != 7 {
		t.Errorf("Expected 7 turns, got %d", loaded.Turns)
	}
	if !loaded.Flags["drawer_open"] {
		t.Error("Expected flag drawer_open to survive the round trip")
	}
}

func TestBoltStorage_LoadNonExistentSession(t *testing.T) {
	bs := setupTestBolt(t)

	loaded, err := bs.LoadSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing session, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil session for missing key")
	}
}

func TestBoltStorage_DeleteSession(t *testing.T) {
	bs := setupTestBolt(t)
	ctx := context.Background()

	st := session.New("manor", testWorld())
	if err := bs.SaveSession(ctx, st); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := bs.DeleteSession(ctx, st.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := bs.LoadSession(ctx, st.ID)
	if err != nil {
		t.Fatalf("Unexpected error after delete: %v", err)
	}
	if loaded != nil {
		t.Error("Expected session to be gone after delete")
	}
}

func TestBoltStorage_Ping(t *testing.T) {
	bs := setupTestBolt(t)
	if err := bs.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping to succeed: %v", err)
	}
}
