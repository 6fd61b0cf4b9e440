package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saltmarsh-games/worldengine/internal/services"
	"github.com/saltmarsh-games/worldengine/internal/storage"
	"github.com/saltmarsh-games/worldengine/pkg/engine"
	"github.com/saltmarsh-games/worldengine/pkg/textfilter"
)

// TurnHandler resolves one turn of play.
// Routes:
// POST /v1/session/{id}/turn - Apply an intent to a session
//
// Turns on the same session are serialized with a per-session mutex, so
// two concurrent requests cannot both read state N and write N+1.
// Different sessions share nothing and run concurrently.
type TurnHandler struct {
	storage  storage.Storage
	narrator services.Narrator
	logger   *slog.Logger
	filter   *textfilter.Filter // nil unless family-friendly mode is on

	locks sync.Map // uuid.UUID → *sync.Mutex
}

func NewTurnHandler(storage storage.Storage, narrator services.Narrator, filter *textfilter.Filter, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		storage:  storage,
		narrator: narrator,
		filter:   filter,
		logger:   logger,
	}
}

// TurnRequest is the request body for a turn. Intent is the structured
// action; Text optionally carries the player's raw words for tone.
type TurnRequest struct {
	Intent engine.Intent `json:"intent"`
	Text   string        `json:"text,omitempty"`
}

// TurnResponse reports what the engine decided and how it was narrated.
// Exactly one of Events or Fault is set.
type TurnResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Narration string           `json:"narration"`
	Events    []engine.Event   `json:"events,omitempty"`
	Fault     *engine.Fault    `json:"fault,omitempty"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	Turns     int              `json:"turns"`
	Won       bool             `json:"won"`
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for turn endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/session"), "/")
	idStr := strings.TrimSuffix(path, "/turn")
	if idStr == path {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	mu := h.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	h.handleTurn(w, r, sessionID, req)
}

func (h *TurnHandler) sessionLock(id uuid.UUID) *sync.Mutex {
	v, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (h *TurnHandler) handleTurn(w http.ResponseWriter, r *http.Request, id uuid.UUID, req TurnRequest) {
	st, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if st == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	wld, err := h.storage.GetWorld(r.Context(), st.World)
	if err != nil {
		h.logger.Error("Failed to load world for session", "uuid", id, "world", st.World, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session world")
		return
	}

	resolver := engine.NewResolver(wld, h.logger)
	next, events, fault := resolver.Resolve(st, req.Intent)

	// Persist before narrating: the narrator can be slow or down, and
	// a committed turn must not be lost to a narration failure.
	if fault == nil {
		if err := h.storage.SaveSession(r.Context(), next); err != nil {
			h.logger.Error("Failed to save session", "uuid", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
			return
		}
	}

	snap := resolver.Snapshot(next)
	narration := h.narrate(r.Context(), wld.Name, req, events, fault, snap)

	h.logger.Debug("Turn resolved",
		"uuid", id,
		"intent", req.Intent.Kind,
		"events", len(events),
		"faulted", fault != nil)

	response := TurnResponse{
		SessionID: id,
		Narration: narration,
		Events:    events,
		Fault:     fault,
		Snapshot:  snap,
		Turns:     next.Turns,
		Won:       next.Won,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode turn response", "error", err)
	}
}

// narrate renders the turn, falling back to plain rendering when the
// model fails. Narration never affects the committed state.
func (h *TurnHandler) narrate(ctx context.Context, worldName string, req TurnRequest, events []engine.Event, fault *engine.Fault, snap *engine.Snapshot) string {
	nctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	nreq := &services.NarrationRequest{
		WorldName:  worldName,
		Intent:     req.Intent,
		PlayerText: req.Text,
		Events:     events,
		Fault:      fault,
		Snapshot:   snap,
	}

	narration, err := h.narrator.Narrate(nctx, nreq)
	if err != nil {
		h.logger.Warn("Narration failed, using plain rendering", "error", err)
		narration = services.RenderPlain(nreq)
	}

	if h.filter != nil {
		narration = h.filter.Clean(narration)
	}
	return narration
}
