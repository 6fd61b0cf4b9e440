package handlers

import (
	"log/slog"
	"os"

	"github.com/saltmarsh-games/worldengine/internal/storage"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// testWorld builds a small world that passes validation: two rooms, a
// portable lamp, and a plaque whose examination wins the game.
func testWorld() *world.World {
	return &world.World{
		Name:        "Test Manor",
		Description: "A manor for tests.",
		Start:       "hall",
		Locations: map[string]*world.Location{
			"hall": {
				Name: "Hall",
				Exits: map[string]*world.Exit{
					"north": {To: "study", DestinationKnown: true},
				},
				Details: map[string]world.Detail{
					"plaque": {Description: "A brass plaque.", SetsFlag: "read_plaque"},
				},
			},
			"study": {
				Name: "Study",
				Exits: map[string]*world.Exit{
					"south": {To: "hall", DestinationKnown: true},
				},
				Items: map[string]world.Placement{
					"lamp": {Description: "A lamp sits on the desk."},
				},
			},
		},
		Items: map[string]*world.Item{
			"lamp": {Name: "lamp", Portable: true},
		},
		Victory: world.Victory{Location: "hall", Flag: "read_plaque"},
	}
}

func testStorage() *storage.MockStorage {
	ms := storage.NewMockStorage()
	ms.AddWorld("manor", testWorld())
	return ms
}
