package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const minimalWorldYAML = `name: Tiny World
start: hall
locations:
  hall:
    name: Hall
    details:
      plaque:
        description: A brass plaque.
        sets_flag: read_plaque
victory:
  location: hall
  flag: read_plaque
`

func writeWorldFile(t *testing.T, dir, name string) {
	t.Helper()
	worldsDir := filepath.Join(dir, "worlds")
	if err := os.MkdirAll(worldsDir, 0o755); err != nil {
		t.Fatalf("Failed to create worlds dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(worldsDir, name), []byte(minimalWorldYAML), 0o644); err != nil {
		t.Fatalf("Failed to write world file: %v", err)
	}
}

func TestWorldLibrary_ListWorlds(t *testing.T) {
	dir := t.TempDir()
	writeWorldFile(t, dir, "tiny.yaml")
	writeWorldFile(t, dir, "manor.yml")

	lib := newWorldLibrary(dir)
	keys, err := lib.ListWorlds(context.Background())
	if err != nil {
		t.Fatalf("Failed to list worlds: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 worlds, got %d: %v", len(keys), keys)
	}
	if keys[0] != "manor" || keys[1] != "tiny" {
		t.Errorf("Expected sorted keys [manor tiny], got %v", keys)
	}
}

func TestWorldLibrary_GetWorld(t *testing.T) {
	dir := t.TempDir()
	writeWorldFile(t, dir, "tiny.yaml")

	lib := newWorldLibrary(dir)
	w, err := lib.GetWorld(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("Failed to load world: %v", err)
	}
	if w.Name != "Tiny World" {
		t.Errorf("Expected name 'Tiny World', got %q", w.Name)
	}
	if w.Start != "hall" {
		t.Errorf("Expected start 'hall', got %q", w.Start)
	}

	// Second fetch comes from cache and returns the same parsed world.
	again, err := lib.GetWorld(context.Background(), "tiny")
	if err != nil {
		t.Fatalf("Failed to load cached world: %v", err)
	}
	if again != w {
		t.Error("Expected cached world to be the same instance")
	}
}

func TestWorldLibrary_GetWorldNotFound(t *testing.T) {
	lib := newWorldLibrary(t.TempDir())
	if _, err := lib.GetWorld(context.Background(), "nope"); err == nil {
		t.Error("Expected error for missing world")
	}
}
