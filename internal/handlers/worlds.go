package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/saltmarsh-games/worldengine/internal/storage"
	"github.com/saltmarsh-games/worldengine/pkg/validate"
)

// WorldsHandler serves read-only world metadata.
// Routes:
// GET /v1/worlds                 - List available world keys
// GET /v1/worlds/{key}           - World summary
// GET /v1/worlds/{key}/validate  - Static analysis report for the world
type WorldsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewWorldsHandler(storage storage.Storage, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{
		storage: storage,
		logger:  logger,
	}
}

// WorldSummary is the listing view of a world, without its full graph.
type WorldSummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Locations   int    `json:"locations"`
	Items       int    `json:"items"`
	NPCs        int    `json:"npcs"`
}

func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for worlds endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/worlds"), "/")
	switch {
	case path == "":
		h.handleList(w, r)
	case strings.HasSuffix(path, "/validate"):
		h.handleValidate(w, r, strings.TrimSuffix(path, "/validate"))
	default:
		h.handleGet(w, r, path)
	}
}

func (h *WorldsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	keys, err := h.storage.ListWorlds(r.Context())
	if err != nil {
		h.logger.Error("Failed to list worlds", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list worlds")
		return
	}

	summaries := make([]WorldSummary, 0, len(keys))
	for _, key := range keys {
		wld, err := h.storage.GetWorld(r.Context(), key)
		if err != nil {
			h.logger.Warn("Skipping unloadable world", "world", key, "error", err)
			continue
		}
		summaries = append(summaries, WorldSummary{
			Key:         key,
			Name:        wld.Name,
			Description: wld.Description,
			Locations:   len(wld.Locations),
			Items:       len(wld.Items),
			NPCs:        len(wld.NPCs),
		})
	}

	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		h.logger.Error("Failed to encode worlds list", "error", err)
	}
}

func (h *WorldsHandler) handleGet(w http.ResponseWriter, r *http.Request, key string) {
	wld, err := h.storage.GetWorld(r.Context(), key)
	if err != nil {
		h.logger.Warn("World not found", "world", key, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "World not found: "+key)
		return
	}

	summary := WorldSummary{
		Key:         key,
		Name:        wld.Name,
		Description: wld.Description,
		Locations:   len(wld.Locations),
		Items:       len(wld.Items),
		NPCs:        len(wld.NPCs),
	}
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		h.logger.Error("Failed to encode world summary", "error", err)
	}
}

func (h *WorldsHandler) handleValidate(w http.ResponseWriter, r *http.Request, key string) {
	wld, err := h.storage.GetWorld(r.Context(), key)
	if err != nil {
		h.logger.Warn("World not found", "world", key, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "World not found: "+key)
		return
	}

	report := validate.Run(wld)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("Failed to encode validation report", "error", err)
	}
}
