package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/saltmarsh-games/worldengine/pkg/world"
)

// worldLibrary loads world definitions from DATA_DIR/worlds/*.yaml.
// Worlds are immutable once loaded, so the cache is never invalidated
// within a process.
type worldLibrary struct {
	dataDir string

	mu    sync.RWMutex
	cache map[string]*world.World
}

func newWorldLibrary(dataDir string) *worldLibrary {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &worldLibrary{
		dataDir: dataDir,
		cache:   make(map[string]*world.World),
	}
}

func (l *worldLibrary) worldsDir() string {
	return filepath.Join(l.dataDir, "worlds")
}

// ListWorlds returns the keys of every world file in the data
// directory, sorted.
func (l *worldLibrary) ListWorlds(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.worldsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds directory %s: %w", l.worldsDir(), err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			keys = append(keys, strings.TrimSuffix(name, ".yaml"))
		} else if strings.HasSuffix(name, ".yml") {
			keys = append(keys, strings.TrimSuffix(name, ".yml"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// GetWorld loads a world by key, caching the parsed result.
func (l *worldLibrary) GetWorld(_ context.Context, key string) (*world.World, error) {
	l.mu.RLock()
	if w, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return w, nil
	}
	l.mu.RUnlock()

	path := filepath.Join(l.worldsDir(), key+".yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(l.worldsDir(), key+".yml")
	}

	w, err := world.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load world %q: %w", key, err)
	}

	l.mu.Lock()
	l.cache[key] = w
	l.mu.Unlock()
	return w, nil
}
